package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/forms"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

// TicketBackend is the part of the backend the ticket workflows use.
type TicketBackend interface {
	ports.TicketAPI
	ports.CatalogAPI
	ports.NotificationAPI
}

// TicketService runs the ticket, category and notification workflows.
// Forms are validated before any request is sent. It keeps no local copy
// of backend data: after a change callers refetch.
type TicketService struct {
	api TicketBackend
	log zerolog.Logger
}

func NewTicketService(api TicketBackend, log zerolog.Logger) *TicketService {
	return &TicketService{api: api, log: log}
}

func requireToken(token string) error {
	if token == "" {
		return domain.ErrNotSignedIn
	}
	return nil
}

func (s *TicketService) List(ctx context.Context, token string, filter ports.TicketFilter) (*domain.TicketPage, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := forms.Validate(filter); err != nil {
		return nil, err
	}
	return s.api.ListTickets(ctx, token, filter)
}

func (s *TicketService) Get(ctx context.Context, token string, id int64) (*domain.Ticket, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	return s.api.GetTicket(ctx, token, id)
}

func (s *TicketService) Create(ctx context.Context, token string, form forms.Ticket) (*domain.Ticket, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	ticket, err := s.api.CreateTicket(ctx, token, form.Input())
	if err != nil {
		return nil, err
	}
	s.log.Info().Int64("ticket_id", ticket.ID).Msg("ticket created")
	return ticket, nil
}

// CreateAndRefresh creates a ticket and then reloads the list with filter.
// A failed reload still returns the created ticket alongside the error.
func (s *TicketService) CreateAndRefresh(ctx context.Context, token string, form forms.Ticket, filter ports.TicketFilter) (*domain.Ticket, *domain.TicketPage, error) {
	ticket, err := s.Create(ctx, token, form)
	if err != nil {
		return nil, nil, err
	}
	page, err := s.List(ctx, token, filter)
	if err != nil {
		return ticket, nil, fmt.Errorf("reload tickets: %w", err)
	}
	return ticket, page, nil
}

func (s *TicketService) UpdateStatus(ctx context.Context, token string, id int64, form forms.Status) (*domain.Ticket, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	return s.api.UpdateTicketStatus(ctx, token, id, domain.TicketStatus(form.Status))
}

// Assign sets the assignee; nil unassigns.
func (s *TicketService) Assign(ctx context.Context, token string, id int64, assigneeID *int64) (*domain.Ticket, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	return s.api.AssignTicket(ctx, token, id, assigneeID)
}

func (s *TicketService) Comment(ctx context.Context, token string, id int64, form forms.Comment) (*domain.Comment, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	return s.api.AddComment(ctx, token, id, form.Content, form.Internal)
}

func (s *TicketService) Vote(ctx context.Context, token string, id int64, upvote bool) (*domain.VoteResult, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	return s.api.Vote(ctx, token, id, upvote)
}

func (s *TicketService) Attach(ctx context.Context, token string, id int64, filename string, r io.Reader) (*domain.Attachment, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if filename == "" {
		return nil, &domain.ValidationError{Fields: map[string]string{"file": "file is required"}, Msg: "file is required"}
	}
	return s.api.UploadAttachment(ctx, token, id, filename, r)
}

func (s *TicketService) Download(ctx context.Context, token string, attachmentID int64, w io.Writer) (int64, error) {
	if err := requireToken(token); err != nil {
		return 0, err
	}
	return s.api.DownloadAttachment(ctx, token, attachmentID, w)
}

func (s *TicketService) Categories(ctx context.Context, token string) ([]domain.Category, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	return s.api.ListCategories(ctx, token)
}

func (s *TicketService) CreateCategory(ctx context.Context, token string, form forms.Category) (*domain.Category, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	return s.api.CreateCategory(ctx, token, form.Input())
}

func (s *TicketService) Users(ctx context.Context, token string, filter ports.UserFilter) ([]domain.User, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	return s.api.ListUsers(ctx, token, filter)
}

func (s *TicketService) Notifications(ctx context.Context, token string, filter ports.NotificationFilter) ([]domain.Notification, error) {
	if err := requireToken(token); err != nil {
		return nil, err
	}
	return s.api.ListNotifications(ctx, token, filter)
}

func (s *TicketService) MarkRead(ctx context.Context, token string, id int64) error {
	if err := requireToken(token); err != nil {
		return err
	}
	return s.api.MarkNotificationRead(ctx, token, id)
}
