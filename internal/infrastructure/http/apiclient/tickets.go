package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

func ticketPath(id int64, suffix string) string {
	return fmt.Sprintf("/tickets/%d%s", id, suffix)
}

// ListTickets returns one page of tickets visible to the token's user.
func (c *Client) ListTickets(ctx context.Context, token string, filter ports.TicketFilter) (*domain.TicketPage, error) {
	var page domain.TicketPage
	if err := c.Do(ctx, "/tickets", Request{Token: token, Query: filter.Query()}, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetTicket returns the detail projection of a ticket, with comments and
// attachments.
func (c *Client) GetTicket(ctx context.Context, token string, id int64) (*domain.Ticket, error) {
	var result struct {
		Ticket *domain.Ticket `json:"ticket"`
	}
	if err := c.Do(ctx, ticketPath(id, ""), Request{Token: token}, &result); err != nil {
		return nil, err
	}
	return requireTicket(result.Ticket)
}

func (c *Client) CreateTicket(ctx context.Context, token string, input ports.CreateTicketInput) (*domain.Ticket, error) {
	var result struct {
		Ticket *domain.Ticket `json:"ticket"`
	}
	if err := c.Do(ctx, "/tickets", Request{Method: http.MethodPost, Token: token, Body: input}, &result); err != nil {
		return nil, err
	}
	return requireTicket(result.Ticket)
}

// UpdateTicketStatus is restricted to agents and admins by the backend.
func (c *Client) UpdateTicketStatus(ctx context.Context, token string, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	var result struct {
		Ticket *domain.Ticket `json:"ticket"`
	}
	err := c.Do(ctx, ticketPath(id, "/status"), Request{
		Method: http.MethodPut,
		Token:  token,
		Body:   map[string]domain.TicketStatus{"status": status},
	}, &result)
	if err != nil {
		return nil, err
	}
	return requireTicket(result.Ticket)
}

// AssignTicket sets or, with a nil assigneeID, clears the assignee.
func (c *Client) AssignTicket(ctx context.Context, token string, id int64, assigneeID *int64) (*domain.Ticket, error) {
	var result struct {
		Ticket *domain.Ticket `json:"ticket"`
	}
	err := c.Do(ctx, ticketPath(id, "/assign"), Request{
		Method: http.MethodPut,
		Token:  token,
		Body:   map[string]*int64{"assigned_to_id": assigneeID},
	}, &result)
	if err != nil {
		return nil, err
	}
	return requireTicket(result.Ticket)
}

// AddComment posts a reply. The backend downgrades internal comments from
// end users to public ones.
func (c *Client) AddComment(ctx context.Context, token string, id int64, content string, internal bool) (*domain.Comment, error) {
	var result struct {
		Comment *domain.Comment `json:"comment"`
	}
	err := c.Do(ctx, ticketPath(id, "/comments"), Request{
		Method: http.MethodPost,
		Token:  token,
		Body: struct {
			Content    string `json:"content"`
			IsInternal bool   `json:"is_internal"`
		}{content, internal},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Comment == nil {
		return nil, fmt.Errorf("add comment: empty comment in response")
	}
	return result.Comment, nil
}

// Vote casts an up- or downvote. Repeating the same vote removes it.
func (c *Client) Vote(ctx context.Context, token string, id int64, upvote bool) (*domain.VoteResult, error) {
	var result struct {
		VoteResult *domain.VoteResult `json:"vote_result"`
	}
	err := c.Do(ctx, ticketPath(id, "/vote"), Request{
		Method: http.MethodPost,
		Token:  token,
		Body:   map[string]bool{"is_upvote": upvote},
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.VoteResult == nil {
		return nil, fmt.Errorf("vote: empty vote_result in response")
	}
	return result.VoteResult, nil
}

func requireTicket(t *domain.Ticket) (*domain.Ticket, error) {
	if t == nil {
		return nil, fmt.Errorf("empty ticket in response")
	}
	return t, nil
}
