package ports

import (
	"net/url"
	"strconv"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
)

// TicketFilter carries the query parameters of the ticket list endpoint.
// Zero-valued fields are omitted from the query string.
type TicketFilter struct {
	Search     string `validate:"omitempty,max=200"`
	Status     string `validate:"omitempty,oneof=open in_progress resolved closed"`
	CategoryID int64  `validate:"gte=0"`
	SortBy     string `validate:"omitempty,oneof=updated_at created_at votes replies"`
	SortOrder  string `validate:"omitempty,oneof=asc desc"`
	Limit      int    `validate:"gte=0,lte=100"`
	Offset     int    `validate:"gte=0"`
}

// Query encodes the non-zero fields.
func (f TicketFilter) Query() url.Values {
	q := url.Values{}
	setString(q, "search", f.Search)
	setString(q, "status", f.Status)
	if f.CategoryID > 0 {
		q.Set("category_id", strconv.FormatInt(f.CategoryID, 10))
	}
	setString(q, "sort_by", f.SortBy)
	setString(q, "sort_order", f.SortOrder)
	setInt(q, "limit", f.Limit)
	setInt(q, "offset", f.Offset)
	return q
}

// UserFilter carries the query parameters of the admin user list.
type UserFilter struct {
	Search string
	Role   domain.Role
	Limit  int
	Offset int
}

func (f UserFilter) Query() url.Values {
	q := url.Values{}
	setString(q, "search", f.Search)
	setString(q, "role", string(f.Role))
	setInt(q, "limit", f.Limit)
	setInt(q, "offset", f.Offset)
	return q
}

// NotificationFilter carries the query parameters of the notification list.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

func (f NotificationFilter) Query() url.Values {
	q := url.Values{}
	if f.UnreadOnly {
		q.Set("unread_only", "true")
	}
	setInt(q, "limit", f.Limit)
	setInt(q, "offset", f.Offset)
	return q
}

func setString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func setInt(q url.Values, key string, value int) {
	if value > 0 {
		q.Set(key, strconv.Itoa(value))
	}
}
