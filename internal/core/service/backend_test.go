package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/forms"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
	"github.com/quickdesk/helpdesk-client/internal/core/service"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/db/file"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/http/apiclient"
	"github.com/quickdesk/helpdesk-client/internal/testbackend"
)

func TestEndToEnd_EndUserDashboardAndFilter(t *testing.T) {
	b := testbackend.Start(t)
	b.AddTicket("user", "VPN", domain.StatusOpen, domain.PriorityHigh, "Technical Support")
	b.AddTicket("user", "Billing", domain.StatusClosed, domain.PriorityLow, "Account Issues")
	b.AddTicket("user", "Email", domain.StatusOpen, domain.PriorityMedium, "Technical Support")
	b.AddNotification("user", "Welcome")

	ctx := context.Background()
	client := apiclient.New(b.URL())
	store := file.NewStore(filepath.Join(t.TempDir(), "session.json"))
	sessions := service.NewSessionManager(client, store, zerolog.Nop())
	sessions.Initialize(ctx)

	session, err := sessions.Login(ctx, "user", testbackend.UserPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Role() != domain.RoleEndUser {
		t.Fatalf("expected end_user, got %s", session.Role())
	}

	dash := service.NewDashboardService(client, zerolog.Nop()).Load(ctx, sessions.Token(), session.Role())
	if !dash.Stats.OK() {
		t.Fatalf("dashboard failed: %s", dash.Stats.Message())
	}
	if got := dash.Stats.Data.TicketCounts; got.Open != 2 || got.Closed != 1 || got.Total != 3 {
		t.Fatalf("unexpected counts: %+v", got)
	}
	if dash.Unread() != 1 || len(dash.Categories.Data) != 5 {
		t.Fatalf("unexpected panels: unread=%d categories=%d", dash.Unread(), len(dash.Categories.Data))
	}
	if dash.TopVoted() != nil {
		t.Fatalf("end users must not see staff panels")
	}

	tickets := service.NewTicketService(client, zerolog.Nop())
	page, err := tickets.List(ctx, sessions.Token(), ports.TicketFilter{Status: "open"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 open tickets, got %d", page.TotalCount)
	}
	for _, tk := range page.Tickets {
		if tk.Status != domain.StatusOpen {
			t.Fatalf("unexpected status %s", tk.Status)
		}
	}
}

func TestEndToEnd_CreateThenRefetchAndRestart(t *testing.T) {
	b := testbackend.Start(t)
	ctx := context.Background()
	client := apiclient.New(b.URL())
	path := filepath.Join(t.TempDir(), "session.json")

	sessions := service.NewSessionManager(client, file.NewStore(path), zerolog.Nop())
	sessions.Initialize(ctx)
	if _, err := sessions.Login(ctx, "user", testbackend.UserPassword); err != nil {
		t.Fatalf("login: %v", err)
	}

	// A second process over the same session file is already signed in.
	restarted := service.NewSessionManager(client, file.NewStore(path), zerolog.Nop())
	if s := restarted.Initialize(ctx); !s.Authenticated() || s.User.Username != "user" {
		t.Fatalf("expected restored session, got %+v", s)
	}

	tickets := service.NewTicketService(client, zerolog.Nop())
	created, page, err := tickets.CreateAndRefresh(ctx, restarted.Token(), forms.Ticket{
		Subject:     "Monitor flickers",
		Description: "Since this morning",
		CategoryID:  b.CategoryID("Technical Support"),
	}, ports.TicketFilter{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	found := false
	for _, tk := range page.Tickets {
		if tk.ID == created.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("refetched list must include the new ticket")
	}

	_, err = tickets.Create(ctx, restarted.Token(), forms.Ticket{Subject: "x", Description: "y", CategoryID: 4242})
	if err == nil || err.Error() != "Category not found" {
		t.Fatalf("expected backend message, got %v", err)
	}

	restarted.Logout(ctx)
	if s := service.NewSessionManager(client, file.NewStore(path), zerolog.Nop()).Initialize(ctx); s.Authenticated() {
		t.Fatalf("logout must clear the persisted session")
	}
}

func TestEndToEnd_AgentSeesStaffPanels(t *testing.T) {
	b := testbackend.Start(t)
	b.AddTicket("user", "One", domain.StatusOpen, domain.PriorityLow, "Bug Report")
	ctx := context.Background()
	client := apiclient.New(b.URL())

	sessions := service.NewSessionManager(client, file.NewStore(filepath.Join(t.TempDir(), "s.json")), zerolog.Nop())
	session, err := sessions.Login(ctx, "agent", testbackend.AgentPassword)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	dash := service.NewDashboardService(client, zerolog.Nop()).Load(ctx, session.Token, session.Role())
	if len(dash.TopVoted()) != 1 || len(dash.MostActive()) != 1 {
		t.Fatalf("expected staff panels, got %+v", dash.Stats.Data)
	}
}
