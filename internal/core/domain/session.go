package domain

// Session is the client-held pair of authenticated user and bearer token.
// The zero value is the empty (signed-out) session.
type Session struct {
	User  *User
	Token string
}

// NewSession builds a session from a user and token. Unless both are
// present the empty session is returned, so a half-populated session can
// never exist.
func NewSession(user *User, token string) Session {
	if user == nil || token == "" {
		return Session{}
	}
	u := *user
	return Session{User: &u, Token: token}
}

// Authenticated reports whether the session carries a user and a token.
func (s Session) Authenticated() bool {
	return s.User != nil && s.Token != ""
}

// Role returns the signed-in user's role, or "" for the empty session.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}
