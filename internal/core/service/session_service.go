package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quickdesk/helpdesk-client/internal/core/domain"
	"github.com/quickdesk/helpdesk-client/internal/core/ports"
)

// Session store keys.
const (
	TokenKey = "helpdesk.token"
	UserKey  = "helpdesk.user"
)

// SessionManager owns the signed-in user and bearer token, restores them
// from the session store at startup and persists every change. Consumers
// read the token with Token() and pass it to each API call.
type SessionManager struct {
	auth  ports.Authenticator
	store ports.SessionStore
	log   zerolog.Logger

	// writeMu serialises state changes so memory and store move together.
	writeMu sync.Mutex

	mu      sync.RWMutex
	session domain.Session
	ready   bool
}

func NewSessionManager(auth ports.Authenticator, store ports.SessionStore, log zerolog.Logger) *SessionManager {
	return &SessionManager{auth: auth, store: store, log: log}
}

// Initialize restores a persisted session. A session is adopted only when
// both entries are present and the user record decodes; anything else
// yields the empty session. It never calls the backend and always leaves
// the manager ready.
func (m *SessionManager) Initialize(ctx context.Context) domain.Session {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	session := m.restore(ctx)

	m.mu.Lock()
	m.session = session
	m.ready = true
	m.mu.Unlock()

	if session.Authenticated() {
		m.log.Debug().Str("username", session.User.Username).Str("role", string(session.Role())).Msg("session restored")
	}
	return session
}

func (m *SessionManager) restore(ctx context.Context) domain.Session {
	token, hasToken, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		m.log.Warn().Err(err).Msg("read persisted token")
		return domain.Session{}
	}
	raw, hasUser, err := m.store.Get(ctx, UserKey)
	if err != nil {
		m.log.Warn().Err(err).Msg("read persisted user")
		return domain.Session{}
	}
	if !hasToken || !hasUser {
		return domain.Session{}
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.log.Warn().Err(err).Msg("persisted user is not valid json, ignoring session")
		return domain.Session{}
	}
	return domain.NewSession(&user, token)
}

// Ready reports whether Initialize has completed.
func (m *SessionManager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ready
}

// Session returns a snapshot of the current session.
func (m *SessionManager) Session() domain.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.NewSession(m.session.User, m.session.Token)
}

// Token returns the bearer token, or "" when signed out.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Token
}

// User returns a copy of the signed-in user, or nil.
func (m *SessionManager) User() *domain.User {
	return m.Session().User
}

// Claims peeks at the current token's claims for display.
func (m *SessionManager) Claims() (domain.TokenClaims, error) {
	token := m.Token()
	if token == "" {
		return domain.TokenClaims{}, domain.ErrNotSignedIn
	}
	return domain.PeekToken(token)
}

// Login authenticates against the backend and adopts the returned session.
// If the backend rejects the call the current session is left untouched. If
// the new session cannot be saved the previous one is written back, or
// cleared when that fails too.
func (m *SessionManager) Login(ctx context.Context, username, password string) (domain.Session, error) {
	res, err := m.auth.Login(ctx, username, password)
	if err != nil {
		return domain.Session{}, err
	}
	return m.adopt(ctx, res)
}

// Register creates an account; the backend signs the new user in.
func (m *SessionManager) Register(ctx context.Context, input ports.RegisterInput) (domain.Session, error) {
	res, err := m.auth.Register(ctx, input)
	if err != nil {
		return domain.Session{}, err
	}
	return m.adopt(ctx, res)
}

func (m *SessionManager) adopt(ctx context.Context, res *domain.AuthResult) (domain.Session, error) {
	if res == nil {
		return domain.Session{}, domain.ErrEmptySession
	}
	session := domain.NewSession(res.User, res.Token)
	if !session.Authenticated() {
		return domain.Session{}, domain.ErrEmptySession
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.persist(ctx, session); err != nil {
		m.rollback(ctx)
		return domain.Session{}, fmt.Errorf("persist session: %w", err)
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()

	m.log.Info().Str("username", session.User.Username).Str("role", string(session.Role())).Msg("signed in")
	return domain.NewSession(session.User, session.Token), nil
}

// persist writes both entries.
func (m *SessionManager) persist(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(ctx, TokenKey, session.Token); err != nil {
		return err
	}
	return m.store.Set(ctx, UserKey, string(raw))
}

// rollback puts the store back in line with the in-memory session after a
// failed persist. When the previous session cannot be written back either,
// both sides are cleared so memory and store still agree. Callers hold
// writeMu.
func (m *SessionManager) rollback(ctx context.Context) {
	m.mu.RLock()
	prev := m.session
	m.mu.RUnlock()

	if prev.Authenticated() {
		err := m.persist(ctx, prev)
		if err == nil {
			return
		}
		m.log.Warn().Err(err).Str("username", prev.User.Username).Msg("restore previous session failed, signing out")
		m.mu.Lock()
		m.session = domain.Session{}
		m.mu.Unlock()
	}
	m.clearStore(ctx)
}

// RefreshUser re-reads the signed-in user from the backend and replaces
// the cached record. The token is kept. A rejected token is returned as
// an error; signing out is left to the caller.
func (m *SessionManager) RefreshUser(ctx context.Context) (domain.Session, error) {
	token := m.Token()
	if token == "" {
		return domain.Session{}, domain.ErrNotSignedIn
	}
	user, err := m.auth.CurrentUser(ctx, token)
	if err != nil {
		return m.Session(), err
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	// A concurrent logout or login wins over this refresh.
	if m.Token() != token {
		return m.Session(), nil
	}
	session := domain.NewSession(user, token)
	raw, err := json.Marshal(session.User)
	if err != nil {
		return m.Session(), fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Set(ctx, UserKey, string(raw)); err != nil {
		return m.Session(), fmt.Errorf("persist user: %w", err)
	}

	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	return domain.NewSession(session.User, session.Token), nil
}

// Logout clears the session in memory and in the store. Store failures
// are logged; the in-memory session is cleared regardless.
func (m *SessionManager) Logout(ctx context.Context) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	m.mu.Lock()
	username := ""
	if m.session.User != nil {
		username = m.session.User.Username
	}
	m.session = domain.Session{}
	m.mu.Unlock()

	m.clearStore(ctx)
	m.log.Info().Str("username", username).Msg("signed out")
}

func (m *SessionManager) clearStore(ctx context.Context) {
	for _, key := range []string{TokenKey, UserKey} {
		if err := m.store.Delete(ctx, key); err != nil {
			m.log.Warn().Err(err).Str("key", key).Msg("remove persisted session entry")
		}
	}
}
