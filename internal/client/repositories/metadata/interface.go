// Package metadata is the durable key/value store of the client. It holds
// small opaque values, such as the bearer tokens, that must survive restarts.
package metadata

import (
	"context"
)

// Repository is a durable key/value store.
//
// Get returns (nil, nil) for a missing key. Delete and Clear are idempotent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
