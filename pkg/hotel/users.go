package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/boutique-hotel-client/pkg/client"
	"github.com/Sternrassler/boutique-hotel-client/pkg/logging"
	"github.com/Sternrassler/boutique-hotel-client/pkg/session"
)

// UserStore holds the bearer token and the signed-in user.
type UserStore struct {
	api    API
	tokens session.TokenStore
	logger zerolog.Logger

	mu             sync.RWMutex
	loading        bool
	err            string
	registeredUser *User
	token          string
	user           *User
}

// NewUserStore restores the token persisted in tokens, if any.
func NewUserStore(api API, tokens session.TokenStore) *UserStore {
	s := &UserStore{
		api:    api,
		tokens: tokens,
		logger: logging.NewLogger(logging.ComponentUsers),
	}

	if tokens != nil {
		token, err := tokens.Load()
		switch {
		case err == nil:
			s.token = token
		case errors.Is(err, session.ErrTokenNotFound):
		default:
			s.logger.Warn().Err(err).Msg("Failed to load persisted token")
		}
	}
	return s
}

// FetchCurrentUser loads GET /user/ with the stored token. Without a token
// the user is cleared and no request is made. On failure the token is kept
// and the user cleared, since the token may only be temporarily rejected.
func (s *UserStore) FetchCurrentUser(ctx context.Context) (*User, error) {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.user = nil
		s.mu.Unlock()
		return nil, nil
	}
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	defer s.setLoading(false)

	if err := session.Check(token, time.Now()); err != nil {
		s.failUser(err)
		return nil, err
	}

	var user User
	if err := s.api.GetJSON(ctx, "/user/", token, &user); err != nil {
		s.failUser(err)
		s.logger.Warn().Err(err).Str("endpoint", "/user/").Msg("Fetch user failed")
		return nil, fmt.Errorf("fetch user: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	u := user
	return &u, nil
}

// Login exchanges credentials for a token, persists it and loads the user.
// A failure to load the user is recorded in Err but does not fail the login.
func (s *UserStore) Login(ctx context.Context, creds Credentials) (string, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()
	defer s.setLoading(false)

	var raw json.RawMessage
	if err := s.api.PostJSON(ctx, "/login", "", creds, &raw); err != nil {
		logins.WithLabelValues("failure").Inc()
		s.setErr(err)
		s.logger.Warn().Err(err).Str("client_id", creds.ClientID).Msg("Login failed")
		return "", fmt.Errorf("login: %w", err)
	}
	logins.WithLabelValues("success").Inc()

	token := decodeToken(raw)
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if token == "" {
		return "", nil
	}

	if s.tokens != nil {
		if err := s.tokens.Save(token); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to persist token")
		}
	}
	if _, err := s.FetchCurrentUser(ctx); err != nil {
		s.logger.Debug().Err(err).Msg("User not loaded after login")
	}
	return token, nil
}

// Register creates an account via POST /register.
func (s *UserStore) Register(ctx context.Context, reg Registration) (*User, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.registeredUser = nil
	s.mu.Unlock()
	defer s.setLoading(false)

	var user User
	if err := s.api.PostJSON(ctx, "/register", "", reg, &user); err != nil {
		s.setErr(err)
		s.logger.Warn().Err(err).Str("username", reg.Username).Msg("Register failed")
		return nil, fmt.Errorf("register: %w", err)
	}

	s.mu.Lock()
	s.registeredUser = &user
	s.mu.Unlock()

	u := user
	return &u, nil
}

// Reset clears the loading flag, error and registration result.
func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = ""
	s.registeredUser = nil
}

// Logout forgets the token and user and deletes the persisted token.
func (s *UserStore) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if s.tokens == nil {
		return nil
	}
	if err := s.tokens.Delete(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "".
func (s *UserStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user, or nil.
func (s *UserStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// RegisteredUser returns the result of the last Register, or nil.
func (s *UserStore) RegisteredUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.registeredUser == nil {
		return nil
	}
	u := *s.registeredUser
	return &u
}

// Loading reports whether a request is in flight.
func (s *UserStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last error message, or "".
func (s *UserStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *UserStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *UserStore) setErr(err error) {
	s.mu.Lock()
	s.err = client.Message(err)
	s.mu.Unlock()
}

func (s *UserStore) failUser(err error) {
	s.mu.Lock()
	s.err = client.Message(err)
	s.user = nil
	s.mu.Unlock()
}
