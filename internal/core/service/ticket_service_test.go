package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/forms"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

// stubBackend implements TicketBackend and DashboardBackend. Unset
// function fields fail the test when called.
type stubBackend struct {
	t *testing.T

	listTicketsFn   func(ctx context.Context, token string, filter ports.TicketFilter) (*domain.TicketPage, error)
	createTicketFn  func(ctx context.Context, token string, input ports.CreateTicketInput) (*domain.Ticket, error)
	updateStatusFn  func(ctx context.Context, token string, id int64, status domain.TicketStatus) (*domain.Ticket, error)
	addCommentFn    func(ctx context.Context, token string, id int64, content string, internal bool) (*domain.Comment, error)
	dashboardFn     func(ctx context.Context, token string) (*domain.DashboardStats, error)
	categoriesFn    func(ctx context.Context, token string) ([]domain.Category, error)
	notificationsFn func(ctx context.Context, token string, filter ports.NotificationFilter) ([]domain.Notification, error)
}

func (s *stubBackend) unexpected(name string) {
	s.t.Helper()
	s.t.Fatalf("unexpected call to %s", name)
}

func (s *stubBackend) ListTickets(ctx context.Context, token string, filter ports.TicketFilter) (*domain.TicketPage, error) {
	if s.listTicketsFn == nil {
		s.unexpected("ListTickets")
	}
	return s.listTicketsFn(ctx, token, filter)
}

func (s *stubBackend) GetTicket(context.Context, string, int64) (*domain.Ticket, error) {
	s.unexpected("GetTicket")
	return nil, nil
}

func (s *stubBackend) CreateTicket(ctx context.Context, token string, input ports.CreateTicketInput) (*domain.Ticket, error) {
	if s.createTicketFn == nil {
		s.unexpected("CreateTicket")
	}
	return s.createTicketFn(ctx, token, input)
}

func (s *stubBackend) UpdateTicketStatus(ctx context.Context, token string, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
	if s.updateStatusFn == nil {
		s.unexpected("UpdateTicketStatus")
	}
	return s.updateStatusFn(ctx, token, id, status)
}

func (s *stubBackend) AssignTicket(context.Context, string, int64, *int64) (*domain.Ticket, error) {
	s.unexpected("AssignTicket")
	return nil, nil
}

func (s *stubBackend) AddComment(ctx context.Context, token string, id int64, content string, internal bool) (*domain.Comment, error) {
	if s.addCommentFn == nil {
		s.unexpected("AddComment")
	}
	return s.addCommentFn(ctx, token, id, content, internal)
}

func (s *stubBackend) Vote(context.Context, string, int64, bool) (*domain.VoteResult, error) {
	s.unexpected("Vote")
	return nil, nil
}

func (s *stubBackend) UploadAttachment(context.Context, string, int64, string, io.Reader) (*domain.Attachment, error) {
	s.unexpected("UploadAttachment")
	return nil, nil
}

func (s *stubBackend) DownloadAttachment(context.Context, string, int64, io.Writer) (int64, error) {
	s.unexpected("DownloadAttachment")
	return 0, nil
}

func (s *stubBackend) ListCategories(ctx context.Context, token string) ([]domain.Category, error) {
	if s.categoriesFn == nil {
		s.unexpected("ListCategories")
	}
	return s.categoriesFn(ctx, token)
}

func (s *stubBackend) CreateCategory(context.Context, string, ports.CreateCategoryInput) (*domain.Category, error) {
	s.unexpected("CreateCategory")
	return nil, nil
}

func (s *stubBackend) ListUsers(context.Context, string, ports.UserFilter) ([]domain.User, error) {
	s.unexpected("ListUsers")
	return nil, nil
}

func (s *stubBackend) ListNotifications(ctx context.Context, token string, filter ports.NotificationFilter) ([]domain.Notification, error) {
	if s.notificationsFn == nil {
		s.unexpected("ListNotifications")
	}
	return s.notificationsFn(ctx, token, filter)
}

func (s *stubBackend) MarkNotificationRead(context.Context, string, int64) error {
	s.unexpected("MarkNotificationRead")
	return nil
}

func (s *stubBackend) Dashboard(ctx context.Context, token string) (*domain.DashboardStats, error) {
	if s.dashboardFn == nil {
		s.unexpected("Dashboard")
	}
	return s.dashboardFn(ctx, token)
}

func TestTicketService_RequiresToken(t *testing.T) {
	svc := NewTicketService(&stubBackend{t: t}, zerolog.Nop())

	if _, err := svc.List(context.Background(), "", ports.TicketFilter{}); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
	if err := svc.MarkRead(context.Background(), "", 1); !errors.Is(err, domain.ErrNotSignedIn) {
		t.Fatalf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestTicketService_CreateValidatesBeforeRequest(t *testing.T) {
	svc := NewTicketService(&stubBackend{t: t}, zerolog.Nop())

	_, err := svc.Create(context.Background(), "tok", forms.Ticket{Subject: "Printer"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTicketService_CreateAndRefresh(t *testing.T) {
	var created bool
	stub := &stubBackend{t: t}
	stub.createTicketFn = func(_ context.Context, token string, in ports.CreateTicketInput) (*domain.Ticket, error) {
		if token != "tok" || in.Subject != "Printer" || in.CategoryID != 3 {
			t.Fatalf("unexpected create: %s %+v", token, in)
		}
		created = true
		return &domain.Ticket{ID: 11, Subject: in.Subject, Status: domain.StatusOpen}, nil
	}
	stub.listTicketsFn = func(_ context.Context, _ string, filter ports.TicketFilter) (*domain.TicketPage, error) {
		if !created {
			t.Fatalf("list must run after create")
		}
		return &domain.TicketPage{Tickets: []domain.Ticket{{ID: 11}}, TotalCount: 1}, nil
	}
	svc := NewTicketService(stub, zerolog.Nop())

	ticket, page, err := svc.CreateAndRefresh(context.Background(), "tok",
		forms.Ticket{Subject: "Printer", Description: "jammed", CategoryID: 3}, ports.TicketFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticket.ID != 11 || page.TotalCount != 1 {
		t.Fatalf("unexpected result: %+v %+v", ticket, page)
	}
}

func TestTicketService_CreateBackendRejection(t *testing.T) {
	stub := &stubBackend{t: t}
	stub.createTicketFn = func(context.Context, string, ports.CreateTicketInput) (*domain.Ticket, error) {
		return nil, domain.NewHTTPError(400, "/tickets", "Missing required fields")
	}
	svc := NewTicketService(stub, zerolog.Nop())

	_, _, err := svc.CreateAndRefresh(context.Background(), "tok",
		forms.Ticket{Subject: "a", Description: "b", CategoryID: 1}, ports.TicketFilter{})
	if err == nil || err.Error() != "Missing required fields" {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestTicketService_UpdateStatusValidates(t *testing.T) {
	stub := &stubBackend{t: t}
	stub.updateStatusFn = func(_ context.Context, _ string, id int64, status domain.TicketStatus) (*domain.Ticket, error) {
		return &domain.Ticket{ID: id, Status: status}, nil
	}
	svc := NewTicketService(stub, zerolog.Nop())

	if _, err := svc.UpdateStatus(context.Background(), "tok", 4, forms.Status{Status: "done"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	ticket, err := svc.UpdateStatus(context.Background(), "tok", 4, forms.Status{Status: "closed"})
	if err != nil || ticket.Status != domain.StatusClosed {
		t.Fatalf("unexpected result: %+v %v", ticket, err)
	}
}

func TestTicketService_CommentPassesInternalFlag(t *testing.T) {
	stub := &stubBackend{t: t}
	stub.addCommentFn = func(_ context.Context, _ string, _ int64, content string, internal bool) (*domain.Comment, error) {
		return &domain.Comment{Content: content, IsInternal: internal}, nil
	}
	svc := NewTicketService(stub, zerolog.Nop())

	c, err := svc.Comment(context.Background(), "tok", 1, forms.Comment{Content: "checking", Internal: true})
	if err != nil || !c.IsInternal {
		t.Fatalf("unexpected comment: %+v %v", c, err)
	}
}

func TestTicketService_ListRejectsBadFilter(t *testing.T) {
	svc := NewTicketService(&stubBackend{t: t}, zerolog.Nop())
	if _, err := svc.List(context.Background(), "tok", ports.TicketFilter{Status: "archived"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
