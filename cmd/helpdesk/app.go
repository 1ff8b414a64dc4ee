package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
	"github.com/quickdesk/helpdesk-client/internal/core/service"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/db/file"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/db/memory"
	mongostore "github.com/quickdesk/helpdesk-client/internal/infrastructure/db/mongo"
	redisstore "github.com/quickdesk/helpdesk-client/internal/infrastructure/db/redis"
	"github.com/quickdesk/helpdesk-client/internal/infrastructure/http/apiclient"
	"github.com/quickdesk/helpdesk-client/internal/pkg/config"
	"github.com/quickdesk/helpdesk-client/pkg/logger"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// command is one subcommand. run receives the arguments after the
// command name.
type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "Sign in and save the session", runLogin},
	{"register", "Create an end-user account and sign in", runRegister},
	{"logout", "Sign out and forget the saved session", runLogout},
	{"whoami", "Show the signed-in user", runWhoami},
	{"dashboard", "Show ticket statistics for your role", runDashboard},
	{"tickets", "List tickets", runTickets},
	{"ticket", "Show one ticket with comments and attachments", runTicket},
	{"create", "Open a new ticket", runCreate},
	{"status", "Change a ticket's status (agents and admins)", runStatus},
	{"assign", "Assign or unassign a ticket (agents and admins)", runAssign},
	{"comment", "Reply to a ticket", runComment},
	{"vote", "Up- or downvote a ticket", runVote},
	{"attach", "Upload a file to a ticket", runAttach},
	{"download", "Download an attachment", runDownload},
	{"categories", "List or create categories", runCategories},
	{"users", "List users (admins)", runUsers},
	{"notifications", "List your notifications", runNotifications},
	{"read", "Mark a notification as read", runRead},
	{"watch", "Poll notifications and serve diagnostics", runWatch},
	{"health", "Check the backend connection", runHealth},
}

// app holds the wiring shared by every command.
type app struct {
	cfg      *config.Config
	io       stdio
	in       *bufio.Reader
	log      zerolog.Logger
	client   *apiclient.Client
	store    ports.SessionStore
	sessions *service.SessionManager
	tickets  *service.TicketService
	dash     *service.DashboardService
	closers  []func(context.Context) error
}

func newApp(ctx context.Context, cfg *config.Config, streams stdio) (*app, error) {
	log := logger.Get()
	store, closer, err := openStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a := newAppWithStore(cfg, streams, store, log)
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a, nil
}

func newAppWithStore(cfg *config.Config, streams stdio, store ports.SessionStore, log zerolog.Logger) *app {
	client := apiclient.New(cfg.APIURL, apiclient.WithLogger(log.With().Str("component", "apiclient").Logger()))
	a := &app{
		cfg:    cfg,
		io:     streams,
		in:     bufio.NewReader(streams.in),
		log:    log,
		client: client,
		store:  store,
	}
	a.sessions = service.NewSessionManager(client, store, log.With().Str("component", "session").Logger())
	a.tickets = service.NewTicketService(client, log.With().Str("component", "tickets").Logger())
	a.dash = service.NewDashboardService(client, log.With().Str("component", "dashboard").Logger())
	return a
}

// openStore builds the configured session store. The returned closer, when
// non-nil, releases its connection.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (ports.SessionStore, func(context.Context) error, error) {
	switch cfg.Session.Store {
	case "memory":
		return memory.NewStore(), nil, nil
	case "redis":
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		log.Debug().Str("addr", cfg.Redis.Addr).Msg("session store: redis")
		closer := func(context.Context) error { return client.Close() }
		return redisstore.NewSessionStore(client, cfg.Session.Namespace, 0), closer, nil
	case "mongo":
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, fmt.Errorf("session store: %w", err)
		}
		log.Debug().Str("database", cfg.Mongo.Database).Msg("session store: mongo")
		return mongostore.NewSessionStore(db, cfg.Session.Namespace), client.Disconnect, nil
	default:
		store := file.NewStore(cfg.Session.File)
		log.Debug().Str("path", store.Path()).Msg("session store: file")
		return store, nil, nil
	}
}

func (a *app) Close() {
	for _, c := range a.closers {
		if err := c(context.Background()); err != nil {
			a.log.Warn().Err(err).Msg("close")
		}
	}
}

// Run dispatches args to a command and maps its error to an exit code.
func (a *app) Run(ctx context.Context, args []string) int {
	if len(args) == 0 {
		a.usage()
		return exitUsage
	}
	name := args[0]
	if name == "help" || name == "-h" || name == "--help" {
		a.usage()
		return exitOK
	}

	for _, c := range commands {
		if c.name != name {
			continue
		}
		a.sessions.Initialize(ctx)
		err := c.run(ctx, a, args[1:])
		return a.report(err)
	}

	fmt.Fprintf(a.io.err, "unknown command %q\n\n", name)
	a.usage()
	return exitUsage
}

func (a *app) usage() {
	fmt.Fprintln(a.io.err, "Usage: helpdesk <command> [flags] [args]")
	fmt.Fprintln(a.io.err)
	fmt.Fprintln(a.io.err, "Commands:")
	names := make([]command, len(commands))
	copy(names, commands)
	sort.Slice(names, func(i, j int) bool { return names[i].name < names[j].name })
	for _, c := range names {
		fmt.Fprintf(a.io.err, "  %-14s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(a.io.err)
	fmt.Fprintln(a.io.err, "Run 'helpdesk <command> --help' for command flags.")
}

// usageError reports bad arguments.
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// report prints err for the user and returns the exit code. A rejected
// token is reported per command with a hint to sign in again; the saved
// session is left for the user to replace.
func (a *app) report(err error) int {
	if err == nil {
		return exitOK
	}
	if errors.Is(err, pflag.ErrHelp) {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(a.io.err, "usage: %s\n", ue.msg)
		return exitUsage
	}

	fmt.Fprintf(a.io.err, "error: %s\n", err)
	switch {
	case domain.IsUnauthorized(err):
		fmt.Fprintln(a.io.err, "Your session is no longer valid. Run 'helpdesk login' to sign in again.")
	case errors.Is(err, domain.ErrNotSignedIn):
		fmt.Fprintln(a.io.err, "Run 'helpdesk login' first.")
	case errors.Is(err, domain.ErrNetwork):
		fmt.Fprintf(a.io.err, "Backend: %s\n", a.client.BaseURL())
	}
	return exitError
}

// flags returns a FlagSet for a command that reports errors instead of
// exiting.
func (a *app) flags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(a.io.err)
	fs.SortFlags = false
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usagef("%s: %v", fs.Name(), err)
	}
	return nil
}

// requireSession returns the signed-in session or ErrNotSignedIn.
func (a *app) requireSession() (domain.Session, error) {
	s := a.sessions.Session()
	if !s.Authenticated() {
		return domain.Session{}, domain.ErrNotSignedIn
	}
	return s, nil
}

// requireStaff is the client-side gate for agent and admin actions. The
// backend enforces the same rule.
func (a *app) requireStaff(action string) (domain.Session, error) {
	s, err := a.requireSession()
	if err != nil {
		return s, err
	}
	if !s.Role().IsStaff() {
		return s, fmt.Errorf("%s is available to support agents and admins only: %w", action, domain.ErrForbidden)
	}
	return s, nil
}

func (a *app) requireAdmin(action string) (domain.Session, error) {
	s, err := a.requireSession()
	if err != nil {
		return s, err
	}
	if !s.Role().IsAdmin() {
		return s, fmt.Errorf("%s is available to admins only: %w", action, domain.ErrForbidden)
	}
	return s, nil
}

// readLine reads one line from stdin without the trailing newline.
func (a *app) readLine(prompt string) (string, error) {
	if prompt != "" {
		fmt.Fprint(a.io.err, prompt)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readSecret prompts without echo on a terminal and falls back to a plain
// line read when stdin is piped.
func (a *app) readSecret(prompt string) (string, error) {
	if f, ok := a.io.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.io.err, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.io.err)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(secret), nil
	}
	return a.readLine("")
}
