package errors

import (
	"github.com/gofiber/fiber/v2"

	"github.com/redhat-data-and-ai/mr-notifier/internal/logging"
)

// WriteResponse converts an error from the notification pipeline into the
// HTTP response the webhook sender sees: 400 for business-rule rejections,
// 200 with an error code in the body for Slack delivery failures.
func WriteResponse(c *fiber.Ctx, err error) error {
	if err == nil {
		return c.SendString("")
	}

	appErr, ok := AsAppError(err)
	if !ok {
		logging.Error("Unclassified error handling webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString("Failed to send message. Please check the logs")
	}

	if appErr.IsValidation() {
		logging.Info("Webhook rejected: %v", appErr)
		return c.Status(appErr.HTTPStatus).SendString("Failed to send message due to a validation error. Please check the logs")
	}

	logging.Error("Slack delivery failed: %v", appErr)
	return c.Status(appErr.HTTPStatus).SendString("Failed to send message due to " + string(appErr.Code))
}
