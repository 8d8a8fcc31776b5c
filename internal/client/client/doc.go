// Package client is the HTTP+JSON transport of gophtasks.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     task backend: Login, RefreshTokens, ListTasks, GetTask, CreateTask,
//     UpdateTask, DeleteTask and ToggleTask.
//  2. A concrete implementation (see HTTPClient) that attaches the bearer
//     access token to every call, and on a 401 response runs exactly one
//     token refresh and retries the original request exactly once.
//
// # Token refresh
//
// The refresh flow is a two-state machine (Idle, Refreshing). Concurrent
// requests that observe a 401 at the same time share one in-flight refresh.
// A request whose 401 was caused by a token that has already been rotated
// by another caller skips the refresh and retries with the current token.
// When the refresh fails, or no refresh token is stored, the token store is
// cleared and the auth-required handler (the "go to sign-in" hook) runs.
//
// # Error Handling
//
// Failures are reported as:
//   - errors matching common.ErrAuthRequired: the session is gone;
//   - errors matching common.ErrNetwork: the server could not be reached; the
//     message always contains "network error";
//   - *HTTPError: any other non-2xx status, not retried;
//   - *models.ValidationError / models.FieldErrors: the payload was rejected
//     locally and nothing was sent.
//
// # Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept a
// context.Context and honor cancellation.
package client
