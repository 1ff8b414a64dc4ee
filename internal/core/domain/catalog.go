package domain

// Category groups tickets by subject area.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	IsActive    bool   `json:"is_active"`
}

// Notification is a per-user message raised by ticket activity.
type Notification struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Type     string    `json:"notification_type"`
	IsRead   bool      `json:"is_read"`
	TicketID *int64    `json:"ticket_id"`
	Created  Timestamp `json:"created_at"`
}

// TicketCounts aggregates tickets per status.
type TicketCounts struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
	Total      int `json:"total"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type UserActivity struct {
	User        string `json:"user"`
	TicketCount int    `json:"ticket_count"`
}

// DashboardStats is the aggregate returned by the dashboard endpoint.
// TopVotedTickets and MostActiveUsers are only populated for staff.
type DashboardStats struct {
	TicketCounts         TicketCounts    `json:"ticket_counts"`
	RecentTickets        []Ticket        `json:"recent_tickets"`
	CategoryDistribution []CategoryCount `json:"category_distribution"`
	TopVotedTickets      []Ticket        `json:"top_voted_tickets,omitempty"`
	MostActiveUsers      []UserActivity  `json:"most_active_users,omitempty"`
}

// HealthStatus is the body of the backend health endpoint.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}
