package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/forms"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
	apphttp "github.com/quickdesk/helpdesk-client/internal/infrastructure/http"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/http/handlers"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/poll"
)

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := a.flags("dashboard")
	if err := parse(fs, args); err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	d := a.dash.Load(ctx, session.Token, session.Role())
	out := a.io.out
	fmt.Fprintf(out, "Welcome back, %s (%s)\n", session.User.FullName, roleLabel(session.Role()))
	if d.Notifications.OK() {
		fmt.Fprintf(out, "Unread notifications: %d\n", d.Unread())
	} else {
		fmt.Fprintf(out, "Unread notifications: unavailable (%s)\n", d.Notifications.Message())
	}

	fmt.Fprintln(out, "\nTickets")
	if !d.Stats.OK() {
		fmt.Fprintf(out, "  %s\n", d.Stats.Message())
	} else {
		stats := d.Stats.Data
		w := newTable(out)
		row(w, "  Open", stats.TicketCounts.Open)
		row(w, "  In progress", stats.TicketCounts.InProgress)
		row(w, "  Resolved", stats.TicketCounts.Resolved)
		row(w, "  Closed", stats.TicketCounts.Closed)
		row(w, "  Total", stats.TicketCounts.Total)
		if err := w.Flush(); err != nil {
			return err
		}

		if len(stats.RecentTickets) > 0 {
			fmt.Fprintln(out, "\nRecent tickets")
			if err := printTickets(out, stats.RecentTickets); err != nil {
				return err
			}
		}
		if len(stats.CategoryDistribution) > 0 {
			fmt.Fprintln(out, "\nBy category")
			w = newTable(out)
			for _, c := range stats.CategoryDistribution {
				row(w, "  "+c.Category, c.Count)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
	}

	if top := d.TopVoted(); len(top) > 0 {
		fmt.Fprintln(out, "\nTop voted")
		if err := printTickets(out, top); err != nil {
			return err
		}
	}
	if active := d.MostActive(); len(active) > 0 {
		fmt.Fprintln(out, "\nMost active users")
		w := newTable(out)
		for _, u := range active {
			row(w, "  "+u.User, u.TicketCount)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintln(out, "\nCategories")
	if !d.Categories.OK() {
		fmt.Fprintf(out, "  %s\n", d.Categories.Message())
		return nil
	}
	return printCategories(out, d.Categories.Data)
}

func printCategories(w io.Writer, cats []domain.Category) error {
	t := newTable(w)
	row(t, "ID", "NAME", "COLOR", "DESCRIPTION")
	for _, c := range cats {
		row(t, c.ID, c.Name, orDash(c.Color), orDash(truncate(c.Description, 50)))
	}
	return t.Flush()
}

func runCategories(ctx context.Context, a *app, args []string) error {
	fs := a.flags("categories")
	var form forms.Category
	fs.StringVar(&form.Name, "create", "", "create a category with this name (admins)")
	fs.StringVar(&form.Description, "description", "", "description of the new category")
	fs.StringVar(&form.Color, "color", "", "hex color of the new category, e.g. #007bff")
	if err := parse(fs, args); err != nil {
		return err
	}

	if form.Name != "" {
		session, err := a.requireAdmin("creating categories")
		if err != nil {
			return err
		}
		c, err := a.tickets.CreateCategory(ctx, session.Token, form)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.io.out, "Created category %d: %s\n", c.ID, c.Name)
		return nil
	}

	session, err := a.requireSession()
	if err != nil {
		return err
	}
	cats, err := a.tickets.Categories(ctx, session.Token)
	if err != nil {
		return err
	}
	return printCategories(a.io.out, cats)
}

func runUsers(ctx context.Context, a *app, args []string) error {
	fs := a.flags("users")
	var filter ports.UserFilter
	role := fs.String("role", "", "end_user, support_agent or admin")
	fs.StringVar(&filter.Search, "search", "", "match username, name or email")
	fs.IntVar(&filter.Limit, "limit", 50, "page size")
	fs.IntVar(&filter.Offset, "offset", 0, "skip this many users")
	if err := parse(fs, args); err != nil {
		return err
	}
	filter.Role = domain.Role(*role)
	if filter.Role != "" && !filter.Role.Valid() {
		return usagef("users: unknown role %q", *role)
	}
	session, err := a.requireAdmin("listing users")
	if err != nil {
		return err
	}

	users, err := a.tickets.Users(ctx, session.Token, filter)
	if err != nil {
		return err
	}
	w := newTable(a.io.out)
	row(w, "ID", "USERNAME", "NAME", "EMAIL", "ROLE", "ACTIVE", "JOINED")
	for _, u := range users {
		row(w, u.ID, u.Username, u.FullName, u.Email, roleLabel(u.Role), u.IsActive, ago(u.CreatedAt))
	}
	return w.Flush()
}

func runNotifications(ctx context.Context, a *app, args []string) error {
	fs := a.flags("notifications")
	var filter ports.NotificationFilter
	fs.BoolVar(&filter.UnreadOnly, "unread", false, "only unread notifications")
	fs.IntVar(&filter.Limit, "limit", 20, "page size")
	if err := parse(fs, args); err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}

	items, err := a.tickets.Notifications(ctx, session.Token, filter)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.io.out, "No notifications")
		return nil
	}
	w := newTable(a.io.out)
	row(w, "ID", "", "TITLE", "TICKET", "WHEN")
	for _, n := range items {
		mark := " "
		if !n.IsRead {
			mark = "*"
		}
		ticket := "-"
		if n.TicketID != nil {
			ticket = fmt.Sprintf("#%d", *n.TicketID)
		}
		row(w, n.ID, mark, n.Title, ticket, ago(n.Created))
	}
	return w.Flush()
}

func runRead(ctx context.Context, a *app, args []string) error {
	fs := a.flags("read")
	if err := parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usagef("read <notification-id>")
	}
	id, err := parseID("notification id", fs.Arg(0))
	if err != nil {
		return err
	}
	session, err := a.requireSession()
	if err != nil {
		return err
	}
	if err := a.tickets.MarkRead(ctx, session.Token, id); err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Notification %d marked as read\n", id)
	return nil
}

func runHealth(ctx context.Context, a *app, args []string) error {
	fs := a.flags("health")
	withDB := fs.Bool("db", false, "also show database statistics (admins)")
	if err := parse(fs, args); err != nil {
		return err
	}

	h, err := a.client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.io.out, "Backend %s: %s (version %s)\n", a.client.BaseURL(), h.Status, orDash(h.Version))
	if !*withDB {
		return nil
	}

	session, err := a.requireAdmin("database statistics")
	if err != nil {
		return err
	}
	raw, err := a.client.DatabaseInfo(ctx, session.Token)
	if err != nil {
		return err
	}
	var pretty any
	if err := json.Unmarshal(raw, &pretty); err != nil {
		_, err = a.io.out.Write(append(raw, '\n'))
		return err
	}
	enc := json.NewEncoder(a.io.out)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}

// badgeState holds the most recent poll result for the diagnostics server.
type badgeState struct {
	mu    sync.RWMutex
	badge poll.Badge
	seen  bool
}

func (s *badgeState) set(b poll.Badge) (prev poll.Badge, hadPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, hadPrev = s.badge, s.seen
	s.badge, s.seen = b, true
	return prev, hadPrev
}

func (s *badgeState) current() (poll.Badge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badge, s.seen
}

func runWatch(ctx context.Context, a *app, args []string) error {
	fs := a.flags("watch")
	interval := fs.Duration("interval", a.cfg.Notify.Interval, "poll interval")
	addr := fs.String("diag-addr", a.cfg.DiagAddr, "diagnostics listen address, empty to disable")
	if err := parse(fs, args); err != nil {
		return err
	}
	if *interval <= 0 {
		return usagef("watch: --interval must be positive")
	}
	if _, err := a.requireSession(); err != nil {
		return err
	}

	state := &badgeState{}
	onBadge := func(b poll.Badge) {
		prev, hadPrev := state.set(b)
		a.printBadge(b, prev, hadPrev)
	}
	poller := poll.NewNotificationPoller(a.client, a.sessions.Token, *interval, onBadge,
		a.log.With().Str("component", "poller").Logger())

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	if *addr != "" {
		probes := []handlers.Probe{{
			Name: "backend",
			Check: func(ctx context.Context) error {
				if !a.client.TestConnection(ctx) {
					return domain.ErrNetwork
				}
				return nil
			},
		}}
		if p, ok := a.store.(ports.Pinger); ok {
			probes = append(probes, handlers.Probe{Name: "session_store", Check: p.Ping})
		}
		e := apphttp.NewRouter(apphttp.Dependencies{
			Probes: probes,
			Badge:  state.current,
			Log:    a.log.With().Str("component", "diagnostics").Logger(),
		})

		g.Go(func() error {
			a.log.Info().Str("addr", *addr).Msg("diagnostics listening")
			if err := e.Start(*addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("diagnostics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		})
	}

	fmt.Fprintf(a.io.err, "Watching notifications every %s. Press Ctrl+C to stop.\n", *interval)
	return g.Wait()
}

// printBadge writes a line when the unread count changes or a poll fails.
func (a *app) printBadge(b, prev poll.Badge, hadPrev bool) {
	ts := b.At.Local().Format(time.TimeOnly)
	if b.Err != nil {
		fmt.Fprintf(a.io.out, "[%s] poll failed: %s\n", ts, b.Err)
		return
	}
	if hadPrev && prev.Err == nil && prev.Unread == b.Unread {
		return
	}
	if b.Latest != nil {
		fmt.Fprintf(a.io.out, "[%s] %d unread, latest: %s\n", ts, b.Unread, b.Latest.Title)
		return
	}
	fmt.Fprintf(a.io.out, "[%s] %d unread\n", ts, b.Unread)
}
