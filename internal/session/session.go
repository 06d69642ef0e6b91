// ABOUTME: Session store holding the signed-in user and the forced password change flag
// ABOUTME: Bootstraps from the persisted token once, and owns login, logout, and expiry

package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/interntrack/admin-cli/internal/client"
	"golang.org/x/sync/singleflight"
)

// API is the subset of the backend the session store calls
type API interface {
	Me(ctx context.Context) (*client.User, error)
	Login(ctx context.Context, creds client.Credentials) (*client.AuthResponse, error)
	Logout(ctx context.Context) error
}

// TokenStore is the durable cell holding the bearer token
type TokenStore interface {
	Token() string
	SetToken(token string) error
	ClearToken() error
}

// State is a point-in-time view of the session
type State struct {
	User               *client.User
	MustChangePassword bool
	Loading            bool
	Initialized        bool
}

// SignedIn reports whether a user is present
func (s State) SignedIn() bool {
	return s.User != nil
}

// Store is the single source of truth for who is signed in.
// It is safe for concurrent use.
type Store struct {
	api    API
	tokens TokenStore

	mu    sync.RWMutex
	state State
	// epoch changes on every login, logout, and expiry so a bootstrap that
	// started earlier cannot overwrite a newer session
	epoch uint64

	sfGroup singleflight.Group
}

// New creates a store in the loading state
func New(api API, tokens TokenStore) *Store {
	return &Store{
		api:    api,
		tokens: tokens,
		state:  State{Loading: true},
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// Initialize resolves the persisted token into a user. It runs at most once
// until the next logout; concurrent callers share the in-flight fetch. It
// never fails: any error leaves the store signed out with the token cleared.
func (s *Store) Initialize(ctx context.Context) {
	if s.initialized() {
		return
	}
	_, _, _ = s.sfGroup.Do("initialize", func() (interface{}, error) {
		s.bootstrap(ctx)
		return nil, nil
	})
}

func (s *Store) initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Initialized
}

func (s *Store) bootstrap(ctx context.Context) {
	s.mu.Lock()
	if s.state.Initialized {
		s.mu.Unlock()
		return
	}
	epoch := s.epoch
	s.state.Loading = true
	s.mu.Unlock()

	if s.tokens.Token() == "" {
		s.apply(epoch, State{Initialized: true})
		return
	}

	user, err := s.api.Me(ctx)
	if err != nil || user == nil {
		slog.Info("Session bootstrap failed, signing out", "error", err)
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.epoch != epoch {
			return
		}
		s.clearToken()
		s.state = State{Initialized: true}
		return
	}

	s.apply(epoch, State{
		User:               user,
		MustChangePassword: user.MustChangePassword,
		Initialized:        true,
	})
}

// apply replaces the state unless a newer session superseded the caller
func (s *Store) apply(epoch uint64, st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epoch != epoch {
		return
	}
	s.state = st
}

// Login submits credentials. On success the token is persisted and the
// response is returned for navigation decisions. Errors are returned
// unchanged so callers can render field-level validation messages.
func (s *Store) Login(ctx context.Context, creds client.Credentials) (*client.AuthResponse, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	return resp, s.SignIn(resp)
}

// SignIn adopts a successful login or registration response
func (s *Store) SignIn(resp *client.AuthResponse) error {
	if resp == nil || resp.User == nil || resp.Token == "" {
		return fmt.Errorf("invalid response from backend: missing user or token")
	}
	if err := s.tokens.SetToken(resp.Token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	u := *resp.User
	s.state = State{
		User:               &u,
		MustChangePassword: u.MustChangePassword,
		Initialized:        true,
	}
	slog.Debug("Signed in", "user_id", u.ID, "must_change_password", u.MustChangePassword)
	return nil
}

// Logout revokes the token on a best-effort basis and always signs out
// locally. The next Initialize starts from scratch.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		slog.Debug("Token revoke failed, signing out locally", "error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	s.clearToken()
	s.state = State{}
}

// Expire handles a 401 seen by any screen: the token is dropped and the
// session becomes signed out without another bootstrap.
func (s *Store) Expire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil && s.tokens.Token() == "" {
		return
	}
	s.epoch++
	s.clearToken()
	s.state = State{Initialized: true}
	slog.Info("Session expired")
}

// PasswordChanged applies a successful password update. The pending change
// flag is cleared and the returned user, when present, replaces the current one.
func (s *Store) PasswordChanged(user *client.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return
	}
	if user != nil {
		u := *user
		u.MustChangePassword = false
		s.state.User = &u
	} else {
		s.state.User.MustChangePassword = false
	}
	s.state.MustChangePassword = false
}

// UpdateUser applies a profile update response
func (s *Store) UpdateUser(user *client.User) {
	if user == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return
	}
	u := *user
	u.MustChangePassword = s.state.MustChangePassword
	s.state.User = &u
}

// clearToken drops the persisted token. Caller holds s.mu.
func (s *Store) clearToken() {
	if err := s.tokens.ClearToken(); err != nil {
		slog.Warn("Failed to clear persisted token", "error", err)
	}
}
