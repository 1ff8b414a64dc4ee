package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

func (c *Client) ListNotifications(ctx context.Context, token string, filter ports.NotificationFilter) ([]domain.Notification, error) {
	var result struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	if err := c.Do(ctx, "/notifications", Request{Token: token, Query: filter.Query()}, &result); err != nil {
		return nil, err
	}
	return result.Notifications, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, token string, id int64) error {
	return c.Do(ctx, fmt.Sprintf("/notifications/%d/read", id), Request{Method: http.MethodPut, Token: token}, nil)
}
