package apiclient

import (
	"context"
	"encoding/json"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

// Dashboard returns aggregate statistics scoped to the token's role.
func (c *Client) Dashboard(ctx context.Context, token string) (*domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if err := c.Do(ctx, "/dashboard", Request{Token: token}, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Health calls the unauthenticated health endpoint.
func (c *Client) Health(ctx context.Context) (*domain.HealthStatus, error) {
	var status domain.HealthStatus
	if err := c.Do(ctx, "/health", Request{}, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// DatabaseInfo returns the backend's diagnostic database description
// verbatim; its shape is backend-defined.
func (c *Client) DatabaseInfo(ctx context.Context, token string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.Do(ctx, "/db-info", Request{Token: token}, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// TestConnection reports whether the health endpoint answers with a
// success. Every failure, including a cancelled context, is false.
func (c *Client) TestConnection(ctx context.Context) bool {
	_, err := c.Health(ctx)
	if err != nil {
		c.log.Debug().Err(err).Msg("connection test failed")
		return false
	}
	return true
}
