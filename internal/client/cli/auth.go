package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

// Signup asks for email, password and confirmation and signs the new user in.
func (a *App) Signup(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm password")
	if err != nil {
		return err
	}

	u, err := a.auth.Signup(ctx, models.SignupForm{Email: email, Password: password, ConfirmPassword: confirm})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Account ready. Signed in as %s\n", u.Email)
	return nil
}

// Login signs in with the email given as the first argument or prompted for.
func (a *App) Login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		var err error
		if email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
			return err
		}
	}
	password, err := a.readSecret("Password")
	if err != nil {
		return err
	}
	return a.login(ctx, email, password)
}

func (a *App) login(ctx context.Context, email, password string) error {
	u, err := a.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s\n", u.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	u, ok := a.auth.Whoami()
	if !ok {
		fmt.Fprintln(a.out, "Not signed in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (id %s)\n", u.Email, u.ID)
	if !u.ExpiresAt.IsZero() {
		state := "valid until"
		if !u.ExpiresAt.After(a.now()) {
			state = "expired at"
		}
		fmt.Fprintf(a.out, "Access token %s %s\n", state, u.ExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}
