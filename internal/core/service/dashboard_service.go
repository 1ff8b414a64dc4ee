package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
	"github.com/quickdesk/helpdesk-client/internal/fetch"
)

// DashboardBackend is the part of the backend the dashboard reads.
type DashboardBackend interface {
	ports.DashboardAPI
	ports.CatalogAPI
	ports.NotificationAPI
}

// Dashboard is the set of independently loaded dashboard panels.
type Dashboard struct {
	Role          domain.Role
	Stats         fetch.Result[*domain.DashboardStats]
	Categories    fetch.Result[[]domain.Category]
	Notifications fetch.Result[[]domain.Notification]
}

// TopVoted is the staff-only panel. It is empty for end users even if the
// backend sent data.
func (d Dashboard) TopVoted() []domain.Ticket {
	if !d.Role.IsStaff() || !d.Stats.OK() {
		return nil
	}
	return d.Stats.Data.TopVotedTickets
}

// MostActive is the staff-only user activity panel.
func (d Dashboard) MostActive() []domain.UserActivity {
	if !d.Role.IsStaff() || !d.Stats.OK() {
		return nil
	}
	return d.Stats.Data.MostActiveUsers
}

// Unread is the number of unread notifications, 0 when that panel failed.
func (d Dashboard) Unread() int {
	if !d.Notifications.OK() {
		return 0
	}
	return len(d.Notifications.Data)
}

type DashboardService struct {
	api DashboardBackend
	log zerolog.Logger
}

func NewDashboardService(api DashboardBackend, log zerolog.Logger) *DashboardService {
	return &DashboardService{api: api, log: log}
}

// Load fetches every panel concurrently. A failing panel is reported in
// its own Result and never blocks the others.
func (s *DashboardService) Load(ctx context.Context, token string, role domain.Role) Dashboard {
	d := Dashboard{Role: role}
	if token == "" {
		d.Stats = fetch.Failed[*domain.DashboardStats](domain.ErrNotSignedIn)
		d.Categories = fetch.Failed[[]domain.Category](domain.ErrNotSignedIn)
		d.Notifications = fetch.Failed[[]domain.Notification](domain.ErrNotSignedIn)
		return d
	}

	var g fetch.Group
	fetch.Into(ctx, &g, &d.Stats, func(ctx context.Context) (*domain.DashboardStats, error) {
		return s.api.Dashboard(ctx, token)
	})
	fetch.Into(ctx, &g, &d.Categories, func(ctx context.Context) ([]domain.Category, error) {
		return s.api.ListCategories(ctx, token)
	})
	fetch.Into(ctx, &g, &d.Notifications, func(ctx context.Context) ([]domain.Notification, error) {
		return s.api.ListNotifications(ctx, token, ports.NotificationFilter{UnreadOnly: true})
	})
	g.Wait()

	for name, msg := range map[string]string{
		"stats":         d.Stats.Message(),
		"categories":    d.Categories.Message(),
		"notifications": d.Notifications.Message(),
	} {
		if msg != "" {
			s.log.Warn().Str("panel", name).Str("error", msg).Msg("dashboard panel failed")
		}
	}
	return d
}
