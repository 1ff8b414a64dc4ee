package domain

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	StatusOpen       TicketStatus = "open"
	StatusInProgress TicketStatus = "in_progress"
	StatusResolved   TicketStatus = "resolved"
	StatusClosed     TicketStatus = "closed"
)

// TicketStatuses lists every status in workflow order.
var TicketStatuses = []TicketStatus{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}

func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// TicketPriority is the urgency assigned at creation time.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

// Ticket is the read-only client projection of a backend ticket. List
// responses fill the flat *_id/*_name fields; detail responses fill the
// nested relations. The client never edits a Ticket in place: every change
// is an API call followed by a refetch.
type Ticket struct {
	ID           int64          `json:"id"`
	Subject      string         `json:"subject"`
	Description  string         `json:"description"`
	Status       TicketStatus   `json:"status"`
	Priority     TicketPriority `json:"priority"`
	CreatedAt    Timestamp      `json:"created_at"`
	UpdatedAt    Timestamp      `json:"updated_at"`
	ResolvedAt   Timestamp      `json:"resolved_at"`
	ClosedAt     Timestamp      `json:"closed_at"`
	Upvotes      int            `json:"upvotes"`
	Downvotes    int            `json:"downvotes"`
	VoteScore    int            `json:"vote_score"`
	CommentCount int            `json:"comment_count"`

	CreatedByID  int64  `json:"created_by_id,omitempty"`
	AssignedToID *int64 `json:"assigned_to_id,omitempty"`
	CategoryID   int64  `json:"category_id,omitempty"`
	CreatorName  string `json:"creator_name,omitempty"`
	AssigneeName string `json:"assignee_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`

	Creator     *User        `json:"creator,omitempty"`
	Assignee    *User        `json:"assignee,omitempty"`
	Category    *Category    `json:"category,omitempty"`
	Comments    []Comment    `json:"comments,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// CategoryLabel returns the category name from whichever projection the
// ticket was decoded from.
func (t Ticket) CategoryLabel() string {
	if t.Category != nil {
		return t.Category.Name
	}
	return t.CategoryName
}

// CreatorLabel returns the creator's display name.
func (t Ticket) CreatorLabel() string {
	if t.Creator != nil {
		return t.Creator.FullName
	}
	return t.CreatorName
}

// AssigneeLabel returns the assignee's display name, or "" when unassigned.
func (t Ticket) AssigneeLabel() string {
	if t.Assignee != nil {
		return t.Assignee.FullName
	}
	return t.AssigneeName
}

// TicketPage is one page of the ticket list endpoint.
type TicketPage struct {
	Tickets    []Ticket `json:"tickets"`
	TotalCount int      `json:"total_count"`
	Limit      int      `json:"limit"`
	Offset     int      `json:"offset"`
	HasMore    bool     `json:"has_more"`
}

// Comment is a reply on a ticket. Internal comments are visible to staff only.
type Comment struct {
	ID         int64     `json:"id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	TicketID   int64     `json:"ticket_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	AuthorRole Role      `json:"author_role"`
	CreatedAt  Timestamp `json:"created_at"`
	UpdatedAt  Timestamp `json:"updated_at"`
}

// Attachment describes a file uploaded to a ticket.
type Attachment struct {
	ID               int64     `json:"id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	TicketID         int64     `json:"ticket_id"`
	UploadedBy       string    `json:"uploaded_by"`
	CreatedAt        Timestamp `json:"created_at"`
}

// VoteResult reports the effect of a vote: a repeated identical vote
// removes it, an opposite vote changes it.
type VoteResult struct {
	Action    string `json:"action"`
	VoteType  string `json:"vote_type"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	VoteScore int    `json:"vote_score"`
}
