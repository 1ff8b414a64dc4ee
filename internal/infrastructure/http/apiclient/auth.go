package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

// Login exchanges credentials for a user record and bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	var result domain.AuthResult
	err := c.Do(ctx, "/auth/login", Request{
		Method: http.MethodPost,
		Body:   map[string]string{"username": username, "password": password},
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an end-user account. The backend signs the new user in
// and returns a token alongside the record.
func (c *Client) Register(ctx context.Context, input ports.RegisterInput) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.Do(ctx, "/auth/register", Request{Method: http.MethodPost, Body: input}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser returns the user the token belongs to.
func (c *Client) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	var result struct {
		User *domain.User `json:"user"`
	}
	if err := c.Do(ctx, "/auth/me", Request{Token: token}, &result); err != nil {
		return nil, err
	}
	if result.User == nil {
		return nil, fmt.Errorf("current user: empty user in response")
	}
	return result.User, nil
}

var _ ports.HelpdeskAPI = (*Client)(nil)
