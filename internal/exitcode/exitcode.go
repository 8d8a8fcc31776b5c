// Package exitcode defines the process exit codes of the gophtasks CLI and
// maps client errors onto them.
package exitcode

import (
	"errors"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad arguments, invalid input or a missing task.
	UserError = 1

	// AuthError indicates the user is not signed in or the session expired.
	AuthError = 2

	// BackendError indicates an API or network failure.
	BackendError = 3
)

// For maps err to an exit code.
func For(err error) int {
	var httpErr *client.HTTPError
	switch {
	case err == nil:
		return Success
	case errors.Is(err, common.ErrAuthRequired),
		errors.Is(err, common.ErrNotAuthenticated),
		errors.Is(err, client.ErrLoginFailed):
		return AuthError
	case errors.Is(err, common.ErrNetwork):
		return BackendError
	case errors.As(err, &httpErr):
		if httpErr.StatusCode == 404 || httpErr.StatusCode == 422 {
			return UserError
		}
		return BackendError
	}
	return UserError
}
