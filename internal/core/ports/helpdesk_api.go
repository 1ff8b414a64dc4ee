package ports

import (
	"context"
	"encoding/json"
	"io"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

// RegisterInput is the body of the registration endpoint.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// CreateTicketInput is the body of the create-ticket endpoint.
type CreateTicketInput struct {
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	CategoryID  int64                 `json:"category_id"`
	Priority    domain.TicketPriority `json:"priority,omitempty"`
}

// CreateCategoryInput is the body of the admin create-category endpoint.
type CreateCategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// Authenticator exchanges credentials for a session and re-reads the
// current user. The session manager depends on nothing else.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*domain.AuthResult, error)
	Register(ctx context.Context, input RegisterInput) (*domain.AuthResult, error)
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
}

// TicketAPI covers the ticket endpoints. Every call takes the bearer token
// explicitly.
type TicketAPI interface {
	ListTickets(ctx context.Context, token string, filter TicketFilter) (*domain.TicketPage, error)
	GetTicket(ctx context.Context, token string, id int64) (*domain.Ticket, error)
	CreateTicket(ctx context.Context, token string, input CreateTicketInput) (*domain.Ticket, error)
	UpdateTicketStatus(ctx context.Context, token string, id int64, status domain.TicketStatus) (*domain.Ticket, error)
	AssignTicket(ctx context.Context, token string, id int64, assigneeID *int64) (*domain.Ticket, error)
	AddComment(ctx context.Context, token string, id int64, content string, internal bool) (*domain.Comment, error)
	Vote(ctx context.Context, token string, id int64, upvote bool) (*domain.VoteResult, error)
	UploadAttachment(ctx context.Context, token string, ticketID int64, filename string, r io.Reader) (*domain.Attachment, error)
	DownloadAttachment(ctx context.Context, token string, attachmentID int64, w io.Writer) (int64, error)
}

// CatalogAPI covers categories and the admin user list.
type CatalogAPI interface {
	ListCategories(ctx context.Context, token string) ([]domain.Category, error)
	CreateCategory(ctx context.Context, token string, input CreateCategoryInput) (*domain.Category, error)
	ListUsers(ctx context.Context, token string, filter UserFilter) ([]domain.User, error)
}

// NotificationAPI covers the per-user notification feed.
type NotificationAPI interface {
	ListNotifications(ctx context.Context, token string, filter NotificationFilter) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, token string, id int64) error
}

// DashboardAPI covers the aggregate statistics endpoint.
type DashboardAPI interface {
	Dashboard(ctx context.Context, token string) (*domain.DashboardStats, error)
}

// SystemAPI covers the diagnostic endpoints.
type SystemAPI interface {
	Health(ctx context.Context) (*domain.HealthStatus, error)
	DatabaseInfo(ctx context.Context, token string) (json.RawMessage, error)
	TestConnection(ctx context.Context) bool
}

// HelpdeskAPI is the full backend surface.
type HelpdeskAPI interface {
	Authenticator
	TicketAPI
	CatalogAPI
	NotificationAPI
	DashboardAPI
	SystemAPI
}
