// Package session holds the signed-in identity of the client. A Session is
// built once at startup and passed to whatever needs the current user.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// Authenticator exchanges credentials for tokens.
type Authenticator interface {
	Login(ctx context.Context, req models.LoginRequest) (models.TokenPair, error)
}

// TokenStore is the part of the token store a Session needs.
type TokenStore interface {
	Access(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, pair models.TokenPair) error
	Clear(ctx context.Context) error
}

type Session struct {
	auth   Authenticator
	tokens TokenStore
	logger logging.Logger

	mu      sync.RWMutex
	user    *models.User
	loading bool
}

func New(auth Authenticator, tokens TokenStore, logger logging.Logger) *Session {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Session{auth: auth, tokens: tokens, logger: logger, loading: true}
}

// Init restores the user from the stored access token without any network
// call. A missing or undecodable token leaves the session signed out.
func (s *Session) Init(ctx context.Context) error {
	defer s.setLoading(false)

	token, ok, err := s.tokens.Access(ctx)
	if err != nil {
		return fmt.Errorf("load access token: %w", err)
	}
	if !ok {
		s.setUser(nil)
		return nil
	}

	u, err := DecodeUser(token)
	if err != nil {
		s.logger.Warn(ctx, "stored access token is not usable", "error", err)
		s.setUser(nil)
		return nil
	}
	if u.Email == "" {
		u.Email = UnknownEmail
	}

	s.setUser(&u)
	s.logger.Debug(ctx, "session restored", "user_id", u.ID)
	return nil
}

// Login authenticates, stores the new pair and sets the current user.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	form := models.LoginForm{Email: strings.TrimSpace(email), Password: password}
	if err := form.Validate(); err != nil {
		return models.User{}, err
	}

	s.setLoading(true)
	defer s.setLoading(false)

	pair, err := s.auth.Login(ctx, models.LoginRequest{Email: form.Email, Password: form.Password})
	if err != nil {
		return models.User{}, err
	}

	u, err := DecodeUser(pair.AccessToken)
	if err != nil {
		return models.User{}, err
	}
	if u.Email == "" {
		u.Email = form.Email
	}

	if err := s.tokens.Set(ctx, pair); err != nil {
		// the pair is still held in memory; only a restart loses it
		s.logger.Warn(ctx, "failed to persist tokens", "error", err)
	}

	s.setUser(&u)
	s.logger.Info(ctx, "signed in", "user_id", u.ID)
	return u, nil
}

// Signup validates the sign-up form and signs in. The backend creates
// unknown accounts on first login.
func (s *Session) Signup(ctx context.Context, form models.SignupForm) (models.User, error) {
	form.Email = strings.TrimSpace(form.Email)
	if err := form.Validate(); err != nil {
		return models.User{}, err
	}
	return s.Login(ctx, form.Email, form.Password)
}

// Logout forgets the tokens and the user. The server is not contacted.
func (s *Session) Logout(ctx context.Context) error {
	s.setUser(nil)
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	s.logger.Info(ctx, "signed out")
	return nil
}

// Expire drops the user after the HTTP client gave up refreshing. The client
// has already cleared the tokens.
func (s *Session) Expire(ctx context.Context) {
	s.setUser(nil)
	s.logger.Info(ctx, "session expired")
}

// User returns a copy of the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) UserID() (string, error) {
	u, ok := s.User()
	if !ok {
		return "", common.ErrNotAuthenticated
	}
	return u.ID, nil
}

func (s *Session) IsAuthenticated() bool {
	_, ok := s.User()
	return ok
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}
