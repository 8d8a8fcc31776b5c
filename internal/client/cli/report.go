package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/taskcache"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

const (
	msgNotSignedIn = "Please log in first (type 'login' or 'signup')"
	msgLoginFailed = "Login failed. Please check your credentials and try again."
	msgNotFound    = "Task not found"
)

// usageError is a malformed command line.
type usageError struct{ usage string }

func (e *usageError) Error() string { return "usage: " + e.usage }

func usageErrorf(format string, args ...any) error {
	return &usageError{usage: fmt.Sprintf(format, args...)}
}

// report prints err for the user. Failures the task cache has already
// announced are skipped.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	var rb *taskcache.RollbackError
	if errors.As(err, &rb) {
		return
	}
	a.logger.Debug(context.Background(), "command failed", "error", err)
	for _, line := range describe(err) {
		fmt.Fprintln(a.out, line)
	}
}

// describe turns err into the lines shown to the user.
func describe(err error) []string {
	var (
		fields models.FieldErrors
		field  *models.ValidationError
		usage  *usageError
	)
	switch {
	case errors.As(err, &fields):
		lines := make([]string, len(fields))
		for i, f := range fields {
			lines[i] = fmt.Sprintf("Invalid %s: %s", f.Field, f.Message)
		}
		return lines
	case errors.As(err, &field):
		return []string{fmt.Sprintf("Invalid %s: %s", field.Field, field.Message)}
	case errors.As(err, &usage):
		return []string{"Usage: " + usage.usage}
	case errors.Is(err, common.ErrAuthRequired):
		return []string{taskcache.MsgSessionGone}
	case errors.Is(err, common.ErrNotAuthenticated):
		return []string{msgNotSignedIn}
	case errors.Is(err, common.ErrNetwork):
		return []string{taskcache.MsgNetwork}
	case errors.Is(err, client.ErrLoginFailed):
		return []string{msgLoginFailed}
	case errors.Is(err, common.ErrNotFound), client.StatusCode(err) == http.StatusNotFound:
		return []string{msgNotFound}
	}
	return []string{"Error: " + err.Error()}
}
