package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/asr-console/internal/notify"
)

// NotificationsHandler serves transient notifications
type NotificationsHandler struct {
	center *notify.Center
}

// NewNotificationsHandler creates a new notifications handler
func NewNotificationsHandler(center *notify.Center) *NotificationsHandler {
	return &NotificationsHandler{center: center}
}

// List returns notifications after ?since=, or the active ones when omitted
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	if c.Query("since") == "" {
		return c.JSON(h.center.Active())
	}
	since := c.QueryInt("since", 0)
	if since < 0 {
		return badRequest(c, "Invalid since", "ERR_INVALID_SINCE")
	}
	return c.JSON(h.center.Since(int64(since)))
}
