// Package tokenstore is the single source of truth for the bearer credentials
// of the current user. Tokens are kept in memory and mirrored to durable
// key/value storage so a restarted client picks the session back up.
package tokenstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/dbx"
)

// Store holds the access/refresh token pair. It is safe for concurrent use.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	access  string
	refresh string
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) repo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

// Set overwrites both tokens in memory and in durable storage. The durable
// write is a single transaction, so a crash never leaves half a pair behind.
// Memory is updated even when the durable write fails; the error is still
// returned. No validation of the token shape is performed.
func (s *Store) Set(ctx context.Context, pair models.TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = pair.AccessToken
	s.refresh = pair.RefreshToken

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		r := s.repo(tx)
		if err := r.Set(ctx, common.AccessTokenKey, []byte(pair.AccessToken)); err != nil {
			return err
		}
		return r.Set(ctx, common.RefreshTokenKey, []byte(pair.RefreshToken))
	})
	if err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	return nil
}

// Access returns the access token. ok is false when no token was ever set.
func (s *Store) Access(ctx context.Context) (token string, ok bool, err error) {
	return s.get(ctx, common.AccessTokenKey, &s.access)
}

// Refresh returns the refresh token. ok is false when no token was ever set.
func (s *Store) Refresh(ctx context.Context) (token string, ok bool, err error) {
	return s.get(ctx, common.RefreshTokenKey, &s.refresh)
}

// get serves from memory and falls back to durable storage on a miss.
func (s *Store) get(ctx context.Context, key string, cached *string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *cached != "" {
		return *cached, true, nil
	}

	v, err := s.repo(s.db).Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	if len(v) == 0 {
		return "", false, nil
	}
	*cached = string(v)
	return *cached, true, nil
}

// Clear removes both tokens from memory and durable storage. It is
// idempotent. Memory is cleared even when the durable delete fails.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.access = ""
	s.refresh = ""

	if err := s.repo(s.db).Delete(ctx, common.AccessTokenKey, common.RefreshTokenKey); err != nil {
		return fmt.Errorf("clear tokens: %w", err)
	}
	return nil
}
