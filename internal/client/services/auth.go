// Package services contains the application services of the gophtasks
// client. This file defines the authentication service: sign-in, sign-up
// and sign-out, keeping the task cache in step with the signed-in user.
package services

import (
	"context"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/taskcache"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Init: restore the user from stored tokens, without network access.
//   - Login / Signup: authenticate and start a fresh task cache.
//   - Logout: forget tokens, user and cached tasks.
//   - Whoami: report the signed-in user.
type AuthService interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, email, password string) (models.User, error)
	Signup(ctx context.Context, form models.SignupForm) (models.User, error)
	Logout(ctx context.Context) error
	Whoami() (models.User, bool)
}

// Session is the identity holder the AuthService drives.
type Session interface {
	Init(ctx context.Context) error
	Login(ctx context.Context, email, password string) (models.User, error)
	Signup(ctx context.Context, form models.SignupForm) (models.User, error)
	Logout(ctx context.Context) error
	User() (models.User, bool)
}

type authService struct {
	session Session
	cache   *taskcache.Cache
}

func NewAuthService(session Session, cache *taskcache.Cache) AuthService {
	return &authService{session: session, cache: cache}
}

func (a *authService) Init(ctx context.Context) error {
	return a.session.Init(ctx)
}

func (a *authService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := a.session.Login(ctx, email, password)
	if err != nil {
		return models.User{}, err
	}
	a.cache.Replace(nil)
	return u, nil
}

func (a *authService) Signup(ctx context.Context, form models.SignupForm) (models.User, error) {
	u, err := a.session.Signup(ctx, form)
	if err != nil {
		return models.User{}, err
	}
	a.cache.Replace(nil)
	return u, nil
}

// Logout clears the cached tasks even when the token store fails.
func (a *authService) Logout(ctx context.Context) error {
	a.cache.Replace(nil)
	return a.session.Logout(ctx)
}

func (a *authService) Whoami() (models.User, bool) {
	return a.session.User()
}
