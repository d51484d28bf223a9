package rushx

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// SessionState is the hydration state machine for a session.
type SessionState int

const (
	// SessionUninitialized means Hydrate has not been invoked yet.
	SessionUninitialized SessionState = iota
	// SessionResolving means the one-time identity check is in flight.
	SessionResolving
	// SessionAuthenticated means a valid user is attached.
	SessionAuthenticated
	// SessionAnonymous means the identity check resolved without a user.
	SessionAnonymous
)

func (s SessionState) String() string {
	switch s {
	case SessionUninitialized:
		return "uninitialized"
	case SessionResolving:
		return "resolving"
	case SessionAuthenticated:
		return "authenticated"
	case SessionAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Session is the single source of truth for "who is logged in". It pairs an
// in-memory token/user snapshot with a durable TokenStore; the two mutate in
// lockstep, never independently.
//
// Construct it explicitly at app start and Bind the API client before first
// use - there is no package-level singleton.
type Session struct {
	store  *TokenStore
	app    string
	logger *zap.Logger

	hydrateOnce sync.Once

	mu     sync.Mutex
	client *Client
	state  SessionState
	tokens *AuthTokens
	user   *User
}

// NewSession creates an unhydrated session scoped to the given app name.
// The app name keys the durable token slots, so each role portal on the same
// machine keeps its own session.
func NewSession(store *TokenStore, app string, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		store:  store,
		app:    app,
		logger: logger,
		state:  SessionUninitialized,
	}
}

// Bind attaches the API client used for identity calls. The client's token
// source should be this session's AccessToken, closing the loop:
//
//	session := rushx.NewSession(store, "customer", logger)
//	client := rushx.NewClient(rushx.WithTokenSource(session.AccessToken))
//	session.Bind(client)
func (s *Session) Bind(client *Client) {
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
}

// AccessToken returns the current access token, or "" when absent. It
// satisfies TokenSource.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tokens == nil {
		return ""
	}
	return s.tokens.Access
}

// State returns the hydration state. Protected views render a loading
// indicator while Uninitialized or Resolving and redirect once Anonymous.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hydrated reports whether the one-time identity check has resolved, with
// either outcome.
func (s *Session) Hydrated() bool {
	switch s.State() {
	case SessionAuthenticated, SessionAnonymous:
		return true
	}
	return false
}

// User returns a copy of the authenticated user, nil when anonymous.
func (s *Session) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Hydrate runs the one-time identity check: load persisted tokens and, when
// present, validate them against /auth/me/. It executes at most once per
// Session; later calls return immediately. Either outcome flips the session
// to a resolved state.
func (s *Session) Hydrate(ctx context.Context) {
	s.hydrateOnce.Do(func() {
		s.mu.Lock()
		client := s.client
		s.state = SessionResolving
		s.tokens = s.store.Load(s.app)
		tokens := s.tokens
		s.mu.Unlock()

		if client == nil || tokens == nil {
			s.mu.Lock()
			s.state = SessionAnonymous
			s.mu.Unlock()
			return
		}

		user, err := client.Auth.Me(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			// Stale or revoked token: resolve anonymous. The persisted
			// tokens stay put, matching the portals' behavior; the next
			// successful login overwrites them.
			s.user = nil
			s.state = SessionAnonymous
			s.logger.Debug("hydration resolved anonymous", zap.Error(err))
			return
		}
		s.user = user
		s.state = SessionAuthenticated
		s.logger.Debug("hydration resolved authenticated",
			zap.Int64("user_id", user.ID), zap.String("role", string(user.Role)))
	})
}

// Login exchanges credentials for tokens, persists them, then loads the
// current user. Any failure along the way leaves the session unauthenticated
// and propagates the error.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return ErrNotAuthenticated
	}

	tokens, err := client.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}

	if err := s.setTokens(tokens); err != nil {
		return err
	}

	user, err := client.Auth.Me(ctx)
	if err != nil {
		// Token accepted but profile fetch failed: roll back to
		// unauthenticated rather than holding tokens without a user.
		s.clearTokens()
		return err
	}

	s.mu.Lock()
	s.user = user
	s.state = SessionAuthenticated
	s.mu.Unlock()
	return nil
}

// Logout clears the durable and in-memory session state. It is synchronous
// and always succeeds; persistence errors are logged, not returned.
func (s *Session) Logout() {
	s.clearTokens()
}

// Refresh exchanges the refresh token for a fresh pair and persists it in
// lockstep.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	var refresh string
	if s.tokens != nil {
		refresh = s.tokens.Refresh
	}
	s.mu.Unlock()

	if client == nil || refresh == "" {
		return ErrNotAuthenticated
	}

	tokens, err := client.Auth.Refresh(ctx, refresh)
	if err != nil {
		return err
	}
	if tokens.Refresh == "" {
		tokens.Refresh = refresh
	}
	return s.setTokens(tokens)
}

// setTokens updates durable storage and the in-memory pair in one operation.
func (s *Session) setTokens(tokens *AuthTokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(s.app, *tokens); err != nil {
		return err
	}
	s.tokens = tokens
	return nil
}

// clearTokens removes durable storage and the in-memory pair in one
// operation and drops the user, preserving the invariant that an absent
// access token implies an absent user.
func (s *Session) clearTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Clear(s.app); err != nil {
		s.logger.Warn("failed to clear persisted tokens", zap.Error(err))
	}
	s.tokens = nil
	s.user = nil
	if s.state != SessionUninitialized && s.state != SessionResolving {
		s.state = SessionAnonymous
	}
}
