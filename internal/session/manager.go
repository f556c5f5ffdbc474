// ABOUTME: Auth session manager owning the signed-in user and token
// ABOUTME: Publishes state transitions; routing is left to the observer

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kabar-app/kabar/internal/client"
)

// ErrNotAuthenticated is returned by operations that need a signed-in user
var ErrNotAuthenticated = errors.New("not signed in")

// State is the authentication state
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// Reason describes what caused a transition
type Reason string

const (
	ReasonColdStart    Reason = "cold_start"
	ReasonLogin        Reason = "login"
	ReasonLogout       Reason = "logout"
	ReasonUnauthorized Reason = "unauthorized"
	ReasonExpired      Reason = "expired"
)

// Transition is published whenever the state is (re)established
type Transition struct {
	From   State
	To     State
	User   *client.User
	Reason Reason
}

// Authenticator performs the credential exchange
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*client.LoginResponse, error)
}

// UserPatch is a partial profile update; nil fields are left unchanged
type UserPatch struct {
	Name  *string
	Email *string
	Role  *string
}

// Manager owns the in-memory session
type Manager struct {
	store   Store
	auth    Authenticator
	logger  *slog.Logger
	now     func() time.Time
	changes chan Transition

	mu    sync.RWMutex
	state State
	user  *client.User
	token string
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock overrides the clock used for token expiry checks
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager. The authenticator may be set later with
// SetAuthenticator when it depends on the manager as its token source.
func NewManager(store Store, auth Authenticator, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:   store,
		auth:    auth,
		logger:  slog.Default(),
		now:     time.Now,
		changes: make(chan Transition, 16),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetAuthenticator sets the login backend
func (m *Manager) SetAuthenticator(auth Authenticator) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.auth = auth
}

// Changes delivers transitions in order. Transitions are dropped if the
// buffer is full.
func (m *Manager) Changes() <-chan Transition {
	return m.changes
}

// Init restores the persisted session at process start
func (m *Manager) Init(ctx context.Context) State {
	rec, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			m.logger.Warn("Failed to load session", "error", err)
		}
		m.set(Unauthenticated, nil, "", ReasonColdStart)
		return Unauthenticated
	}

	if m.expired(rec.Token) {
		m.logger.Info("Stored session token has expired")
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("Failed to clear expired session", "error", err)
		}
		m.set(Unauthenticated, nil, "", ReasonExpired)
		return Unauthenticated
	}

	m.set(Authenticated, rec.User, rec.Token, ReasonColdStart)
	return Authenticated
}

// Login exchanges credentials and persists the session. On any failure the
// stored and in-memory session are left as they were.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.RLock()
	auth := m.auth
	m.mu.RUnlock()
	if auth == nil {
		return errors.New("session manager has no authenticator")
	}

	resp, err := auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	user := resp.User
	if err := m.store.Save(Record{User: &user, Token: resp.Token}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.logger.Info("Signed in", "user_id", user.ID, "role", user.Role)
	m.set(Authenticated, &user, resp.Token, ReasonLogin)
	return nil
}

// Logout clears the session. Memory is cleared even if the store fails.
func (m *Manager) Logout() error {
	return m.end(ReasonLogout)
}

// HandleUnauthorized ends the session after the backend rejects the token
func (m *Manager) HandleUnauthorized() {
	if m.State() != Authenticated {
		return
	}
	if err := m.end(ReasonUnauthorized); err != nil {
		m.logger.Warn("Failed to clear session after 401", "error", err)
	}
}

func (m *Manager) end(reason Reason) error {
	err := m.store.Clear()
	m.set(Unauthenticated, nil, "", reason)
	return err
}

// SetUserData merges patch into the current user and persists it
func (m *Manager) SetUserData(patch UserPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Authenticated || m.user == nil {
		return ErrNotAuthenticated
	}

	updated := *m.user
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Role != nil {
		updated.Role = *patch.Role
	}

	if err := m.store.Save(Record{User: &updated, Token: m.token}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.user = &updated
	return nil
}

// User returns a copy of the signed-in user, or nil
func (m *Manager) User() *client.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// State returns the current state
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Token implements client.TokenSource
func (m *Manager) Token() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *Manager) set(state State, user *client.User, token string, reason Reason) {
	m.mu.Lock()
	from := m.state
	m.state = state
	m.user = user
	m.token = token
	var published *client.User
	if user != nil {
		u := *user
		published = &u
	}
	m.mu.Unlock()

	select {
	case m.changes <- Transition{From: from, To: state, User: published, Reason: reason}:
	default:
		m.logger.Warn("Dropped session transition", "to", state.String(), "reason", string(reason))
	}
}

// expired reports whether token is a JWT whose exp claim has passed.
// Tokens that are not JWTs are treated as opaque and never expire locally.
func (m *Manager) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !m.now().Before(exp.Time)
}
