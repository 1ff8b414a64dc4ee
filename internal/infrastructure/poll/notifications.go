// Package poll keeps the unread-notification badge current by polling the
// backend on a fixed interval while a session is active.
package poll

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
	"github.com/quickdesk/helpdesk-client/internal/metrics"
)

const defaultInterval = 30 * time.Second

// NotificationLister is the backend call the poller makes.
type NotificationLister interface {
	ListNotifications(ctx context.Context, token string, filter ports.NotificationFilter) ([]domain.Notification, error)
}

// TokenSource returns the current bearer token, or "" when signed out.
type TokenSource func() string

// Badge is the result of one poll. Err is set when the poll failed; the
// previous counts should then be kept on screen.
type Badge struct {
	Unread int
	Latest *domain.Notification
	Err    error
	At     time.Time
}

// NotificationPoller polls unread notifications. Polls are skipped while
// the token source is empty; errors are reported in the badge and never
// stop the loop.
type NotificationPoller struct {
	api      NotificationLister
	tokens   TokenSource
	interval time.Duration
	onBadge  func(Badge)
	log      zerolog.Logger
	now      func() time.Time
}

// NewNotificationPoller creates a poller. If interval <= 0, 30s is used.
func NewNotificationPoller(api NotificationLister, tokens TokenSource, interval time.Duration, onBadge func(Badge), log zerolog.Logger) *NotificationPoller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if onBadge == nil {
		onBadge = func(Badge) {}
	}
	return &NotificationPoller{
		api:      api,
		tokens:   tokens,
		interval: interval,
		onBadge:  onBadge,
		log:      log,
		now:      time.Now,
	}
}

// Run polls immediately and then on every tick until ctx is cancelled.
func (p *NotificationPoller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *NotificationPoller) tick(ctx context.Context) {
	if badge, ok := p.Poll(ctx); ok {
		p.onBadge(badge)
	}
}

// Poll performs a single poll. ok is false when there was no session or
// ctx ended mid-request.
func (p *NotificationPoller) Poll(ctx context.Context) (Badge, bool) {
	token := p.tokens()
	if token == "" {
		metrics.NotificationPollsTotal.WithLabelValues("skipped").Inc()
		return Badge{}, false
	}

	unread, err := p.api.ListNotifications(ctx, token, ports.NotificationFilter{UnreadOnly: true})
	if err != nil {
		if ctx.Err() != nil {
			return Badge{}, false
		}
		metrics.NotificationPollsTotal.WithLabelValues("error").Inc()
		p.log.Warn().Err(err).Msg("notification poll failed")
		return Badge{Err: err, At: p.now()}, true
	}

	metrics.NotificationPollsTotal.WithLabelValues("ok").Inc()
	metrics.NotificationsUnread.Set(float64(len(unread)))

	badge := Badge{Unread: len(unread), At: p.now()}
	if len(unread) > 0 {
		latest := unread[0]
		badge.Latest = &latest
	}
	p.log.Debug().Int("unread", badge.Unread).Msg("notification poll")
	return badge, true
}
