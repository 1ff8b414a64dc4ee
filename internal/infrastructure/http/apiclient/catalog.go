package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

func (c *Client) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	var result struct {
		Categories []domain.Category `json:"categories"`
	}
	if err := c.Do(ctx, "/categories", Request{Token: token}, &result); err != nil {
		return nil, err
	}
	return result.Categories, nil
}

// CreateCategory is admin-only on the backend.
func (c *Client) CreateCategory(ctx context.Context, token string, input ports.CreateCategoryInput) (*domain.Category, error) {
	var result struct {
		Category *domain.Category `json:"category"`
	}
	if err := c.Do(ctx, "/categories", Request{Method: http.MethodPost, Token: token, Body: input}, &result); err != nil {
		return nil, err
	}
	if result.Category == nil {
		return nil, fmt.Errorf("create category: empty category in response")
	}
	return result.Category, nil
}

// ListUsers is admin-only on the backend.
func (c *Client) ListUsers(ctx context.Context, token string, filter ports.UserFilter) ([]domain.User, error) {
	var result struct {
		Users []domain.User `json:"users"`
	}
	if err := c.Do(ctx, "/users", Request{Token: token, Query: filter.Query()}, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}
