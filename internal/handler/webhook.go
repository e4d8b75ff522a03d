package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/mr-notifier/internal/config"
	apperrors "github.com/redhat-data-and-ai/mr-notifier/internal/errors"
	"github.com/redhat-data-and-ai/mr-notifier/internal/gitlab"
	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
	"github.com/redhat-data-and-ai/mr-notifier/internal/notify"
)

// WebhookHandler handles GitLab merge request webhook requests
type WebhookHandler struct {
	config   *config.Config
	notifier *notify.Notifier
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(cfg *config.Config, notifier *notify.Notifier) *WebhookHandler {
	return &WebhookHandler{
		config:   cfg,
		notifier: notifier,
	}
}

// HandleNotify processes POST /mr/notify?channel=<team>. The X-Gitlab-Token
// header must match the configured secret; with no secret configured the
// check is disabled.
func (h *WebhookHandler) HandleNotify(c *fiber.Ctx) error {
	if h.config.HasWebhookToken() && c.Get("X-Gitlab-Token") != h.config.GitLab.WebhookToken {
		return c.Status(fiber.StatusForbidden).SendString("Add the correct gitlab token to the webhook")
	}

	var event gitlab.MergeRequestEvent
	if err := c.BodyParser(&event); err != nil {
		logging.Error("Failed to parse webhook payload: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Invalid JSON payload")
	}

	team := c.Query("channel")
	err := h.notifier.HandleMergeRequest(c.UserContext(), &event, team)
	return apperrors.WriteResponse(c, err)
}
