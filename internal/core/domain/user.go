package domain

// Role gates which views and backend operations are available to a user.
type Role string

const (
	RoleEndUser      Role = "end_user"
	RoleSupportAgent Role = "support_agent"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is one of the roles the backend issues.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleSupportAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether r may act on tickets it does not own
// (status changes, assignment, internal comments).
func (r Role) IsStaff() bool {
	return r == RoleSupportAgent || r == RoleAdmin
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the client-side cached copy of a backend user record.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt Timestamp `json:"created_at"`
}

// AuthResult is the payload returned by the login and register endpoints.
type AuthResult struct {
	Message string `json:"message,omitempty"`
	User    *User  `json:"user"`
	Token   string `json:"token"`
}
