package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
	"github.com/quickdesk/helpdesk-client/internal/fetch"
)

func staffStats() *domain.DashboardStats {
	return &domain.DashboardStats{
		TicketCounts:    domain.TicketCounts{Open: 2, Total: 2},
		TopVotedTickets: []domain.Ticket{{ID: 1}},
		MostActiveUsers: []domain.UserActivity{{User: "End User", TicketCount: 2}},
	}
}

func TestDashboardService_PanelsLoadIndependently(t *testing.T) {
	stub := &stubBackend{t: t}
	stub.dashboardFn = func(context.Context, string) (*domain.DashboardStats, error) {
		return nil, domain.NewHTTPError(500, "/dashboard", "")
	}
	stub.categoriesFn = func(context.Context, string) ([]domain.Category, error) {
		return []domain.Category{{ID: 1, Name: "Bug Report"}}, nil
	}
	stub.notificationsFn = func(_ context.Context, _ string, f ports.NotificationFilter) ([]domain.Notification, error) {
		if !f.UnreadOnly {
			t.Fatalf("dashboard should request unread notifications only")
		}
		return []domain.Notification{{ID: 1}, {ID: 2}}, nil
	}

	d := NewDashboardService(stub, zerolog.Nop()).Load(context.Background(), "tok", domain.RoleEndUser)

	if d.Stats.State != fetch.Failure || d.Stats.Message() != "Internal server error. Please try again later." {
		t.Fatalf("unexpected stats result: %+v", d.Stats)
	}
	if !d.Categories.OK() || len(d.Categories.Data) != 1 {
		t.Fatalf("categories should load despite stats failure: %+v", d.Categories)
	}
	if d.Unread() != 2 {
		t.Fatalf("expected 2 unread, got %d", d.Unread())
	}
}

func TestDashboardService_StaffPanelsGatedByRole(t *testing.T) {
	stub := &stubBackend{t: t}
	stub.dashboardFn = func(context.Context, string) (*domain.DashboardStats, error) { return staffStats(), nil }
	stub.categoriesFn = func(context.Context, string) ([]domain.Category, error) { return nil, nil }
	stub.notificationsFn = func(context.Context, string, ports.NotificationFilter) ([]domain.Notification, error) {
		return nil, errors.New("boom")
	}
	svc := NewDashboardService(stub, zerolog.Nop())

	user := svc.Load(context.Background(), "tok", domain.RoleEndUser)
	if user.TopVoted() != nil || user.MostActive() != nil {
		t.Fatalf("end users must not see staff panels")
	}
	if user.Unread() != 0 {
		t.Fatalf("failed notifications panel should count as 0")
	}

	agent := svc.Load(context.Background(), "tok", domain.RoleSupportAgent)
	if len(agent.TopVoted()) != 1 || len(agent.MostActive()) != 1 {
		t.Fatalf("staff should see staff panels")
	}
}

func TestDashboardService_NoToken(t *testing.T) {
	d := NewDashboardService(&stubBackend{t: t}, zerolog.Nop()).Load(context.Background(), "", domain.RoleAdmin)
	if !errors.Is(d.Stats.Err, domain.ErrNotSignedIn) || !errors.Is(d.Categories.Err, domain.ErrNotSignedIn) {
		t.Fatalf("expected not-signed-in failures, got %+v", d)
	}
}
