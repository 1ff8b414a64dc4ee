package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/quickdesk/helpdesk-client/internal/infrastructure/poll"
)

// BadgeHandler handles GET /notifications/badge, exposing the watcher's
// most recent poll result.
type BadgeHandler struct {
	current func() (poll.Badge, bool)
}

func NewBadgeHandler(current func() (poll.Badge, bool)) *BadgeHandler {
	return &BadgeHandler{current: current}
}

type badgeResponse struct {
	Unread      int        `json:"unread"`
	LatestTitle string     `json:"latest_title,omitempty"`
	Error       string     `json:"error,omitempty"`
	PolledAt    *time.Time `json:"polled_at,omitempty"`
}

func (h *BadgeHandler) Badge(c echo.Context) error {
	badge, ok := h.current()
	if !ok {
		return c.JSON(http.StatusOK, badgeResponse{})
	}
	resp := badgeResponse{Unread: badge.Unread}
	if badge.Latest != nil {
		resp.LatestTitle = badge.Latest.Title
	}
	if badge.Err != nil {
		resp.Error = badge.Err.Error()
	}
	if !badge.At.IsZero() {
		at := badge.At.UTC()
		resp.PolledAt = &at
	}
	return c.JSON(http.StatusOK, resp)
}
