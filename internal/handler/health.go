package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	config    *config.Config
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		config:    cfg,
		startTime: time.Now(),
	}
}

// HandleHealth returns health status. No dependency probing: the service is
// healthy as long as it can answer.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	uptime := time.Since(h.startTime)

	return c.JSON(fiber.Map{
		"status":         "healthy",
		"service":        "mr-notifier",
		"uptime_seconds": int64(uptime.Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"security_mode":  h.config.WebhookSecurityMode(),
		"socket_mode":    h.config.HasAppToken(),
	})
}
