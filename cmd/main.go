package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/redhat-data-and-ai/mr-notifier/internal/chat"
	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
	"github.com/redhat-data-and-ai/mr-notifier/internal/handler"
	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
	"github.com/redhat-data-and-ai/mr-notifier/internal/notify"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logging.InitLogger(cfg.Server.LogLevel, "MR-NOTIFIER")

	if !cfg.HasWebhookToken() {
		logging.Warn("GITLAB_WEBHOOK_TOKEN not set - webhook authentication is disabled")
	}

	client := chat.NewWebClient(cfg.Slack.BotToken, cfg.Slack.AppToken)
	users := chat.NewUserDirectory(client, cfg.Mappings.Usernames)
	history := chat.NewHistoryCache(client)
	notifier := notify.New(cfg, client, users, history)

	// Membership events keep the user directory cache honest; without an app
	// token the cache is populated once and never invalidated.
	if cfg.HasAppToken() {
		listener := chat.NewMembershipListener(client.API(), users)
		go func() {
			if err := listener.Run(context.Background()); err != nil {
				logging.Error("Socket Mode listener stopped: %v", err)
			}
		}()
	} else {
		logging.Warn("SLACK_APP_TOKEN not set - membership events disabled, user cache never invalidates")
	}

	webhookHandler := handler.NewWebhookHandler(cfg, notifier)
	healthHandler := handler.NewHealthHandler(cfg)

	app := fiber.New(fiber.Config{
		AppName: "MR Notifier",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logging.Error("Unhandled error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(cors.New())

	app.Get("/health", healthHandler.HandleHealth)
	app.Post("/mr/notify", webhookHandler.HandleNotify)

	logging.Info("MR Notifier starting on port %s", cfg.Server.Port)
	logging.Info("Webhook security: %s", cfg.WebhookSecurityMode())
	log.Fatal(app.Listen(":" + cfg.Server.Port))
}
