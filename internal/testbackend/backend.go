// Package testbackend is an in-memory fake of the help desk REST backend,
// served with echo over httptest. Tests across the module use it for
// end-to-end scenarios; it mirrors the backend's routes, role rules,
// payload shapes and {"error": "..."} envelope closely enough for the
// client to be exercised without a network dependency.
package testbackend

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

const jwtSecret = "testbackend-secret"

// Seeded accounts, matching the backend's default data.
const (
	AdminPassword = "admin123"
	AgentPassword = "agent123"
	UserPassword  = "user123"
)

type user struct {
	domain.User
	passwordHash []byte
	createdAt    time.Time
}

type category struct {
	domain.Category
}

type comment struct {
	id         int64
	ticketID   int64
	authorID   int64
	content    string
	isInternal bool
	createdAt  time.Time
}

type attachment struct {
	id         int64
	ticketID   int64
	uploaderID int64
	filename   string
	mimeType   string
	data       []byte
	createdAt  time.Time
}

type ticket struct {
	id          int64
	subject     string
	description string
	status      domain.TicketStatus
	priority    domain.TicketPriority
	creatorID   int64
	assigneeID  *int64
	categoryID  int64
	createdAt   time.Time
	updatedAt   time.Time
	resolvedAt  time.Time
	closedAt    time.Time
	upvotes     int
	downvotes   int
	votes       map[int64]bool // user id → is_upvote
}

type notification struct {
	id        int64
	userID    int64
	ticketID  *int64
	title     string
	message   string
	kind      string
	isRead    bool
	createdAt time.Time
}

// RecordedRequest is what the backend saw of one inbound call.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
}

// Backend is the fake. All state is guarded by mu.
type Backend struct {
	mu            sync.Mutex
	users         map[int64]*user
	categories    map[int64]*category
	tickets       map[int64]*ticket
	comments      []*comment
	attachments   map[int64]*attachment
	notifications []*notification
	requests      []RecordedRequest
	nextID        int64
	clock         func() time.Time

	echo   *echo.Echo
	server *httptest.Server
}

// New builds a backend seeded with the default admin, agent and end-user
// accounts and the five default categories.
func New() *Backend {
	b := &Backend{
		users:       make(map[int64]*user),
		categories:  make(map[int64]*category),
		tickets:     make(map[int64]*ticket),
		attachments: make(map[int64]*attachment),
		clock:       func() time.Time { return time.Now().UTC() },
	}
	b.seed()
	b.echo = newRouter(b)
	return b
}

// Start serves the backend on a local listener for the duration of the test.
func Start(tb testing.TB) *Backend {
	tb.Helper()
	b := New()
	b.server = httptest.NewServer(b.echo)
	tb.Cleanup(b.server.Close)
	return b
}

// URL is the API root to hand to the client ("http://127.0.0.1:port/api").
func (b *Backend) URL() string {
	return b.server.URL + "/api"
}

// Handler exposes the router for tests that drive it without a listener.
func (b *Backend) Handler() http.Handler {
	return b.echo
}

// Requests returns a snapshot of every call received so far.
func (b *Backend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]RecordedRequest(nil), b.requests...)
}

// UserID returns the id of a seeded or registered account.
func (b *Backend) UserID(username string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, u := range b.users {
		if u.Username == username {
			return u.ID
		}
	}
	return 0
}

// CategoryID returns the id of a category by name.
func (b *Backend) CategoryID(name string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.categories {
		if c.Name == name {
			return c.ID
		}
	}
	return 0
}

// AddTicket inserts a ticket directly, bypassing the API. It returns the id.
func (b *Backend) AddTicket(creator, subject string, status domain.TicketStatus, priority domain.TicketPriority, categoryName string) int64 {
	creatorID := b.UserID(creator)
	categoryID := b.CategoryID(categoryName)

	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.clock()
	t := &ticket{
		id:          b.newID(),
		subject:     subject,
		description: subject,
		status:      status,
		priority:    priority,
		creatorID:   creatorID,
		categoryID:  categoryID,
		createdAt:   now,
		updatedAt:   now,
		votes:       make(map[int64]bool),
	}
	b.tickets[t.id] = t
	return t.id
}

// AddNotification queues a notification for username.
func (b *Backend) AddNotification(username, title string) int64 {
	userID := b.UserID(username)

	b.mu.Lock()
	defer b.mu.Unlock()
	n := &notification{
		id:        b.newID(),
		userID:    userID,
		title:     title,
		message:   title,
		kind:      "ticket_updated",
		createdAt: b.clock(),
	}
	b.notifications = append(b.notifications, n)
	return n.id
}

func (b *Backend) seed() {
	now := b.clock()
	accounts := []struct {
		username, email, fullName, password string
		role                                domain.Role
	}{
		{"admin", "admin@quickdesk.com", "System Administrator", AdminPassword, domain.RoleAdmin},
		{"agent", "agent@quickdesk.com", "Support Agent", AgentPassword, domain.RoleSupportAgent},
		{"user", "user@quickdesk.com", "End User", UserPassword, domain.RoleEndUser},
	}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		id := b.newID()
		b.users[id] = &user{
			User: domain.User{
				ID: id, Username: a.username, Email: a.email, FullName: a.fullName,
				Role: a.role, IsActive: true,
			},
			passwordHash: hash,
			createdAt:    now,
		}
	}

	categories := []struct{ name, description, color string }{
		{"Technical Support", "Technical issues and troubleshooting", "#dc3545"},
		{"Account Issues", "Account access and billing problems", "#ffc107"},
		{"Feature Request", "New feature suggestions and improvements", "#28a745"},
		{"Bug Report", "Software bugs and issues", "#fd7e14"},
		{"General Inquiry", "General questions and information requests", "#007bff"},
	}
	for _, c := range categories {
		id := b.newID()
		b.categories[id] = &category{domain.Category{ID: id, Name: c.name, Description: c.description, Color: c.color, IsActive: true}}
	}
}

// newID must be called with mu held (or during construction).
func (b *Backend) newID() int64 {
	b.nextID++
	return b.nextID
}

func (b *Backend) record(r RecordedRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, r)
}

func sortedTickets(m map[int64]*ticket) []*ticket {
	out := make([]*ticket, 0, len(m))
	for _, t := range m {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}
