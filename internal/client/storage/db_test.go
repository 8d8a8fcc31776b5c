package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_CreatesSchema(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "metadata"))
	require.True(t, tableExists(t, db, "goose_db_version"))
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('k', 'v')`)
	require.NoError(t, err)

	var got string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key='k'`).Scan(&got))
	require.Equal(t, "v", got)
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db))
	require.True(t, tableExists(t, db, "metadata"))
}

func TestOpen_ReopenKeepsData(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES ('access_token', 'T1')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var got string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key='access_token'`).Scan(&got))
	require.Equal(t, "T1", got)
}

func TestDSN(t *testing.T) {
	require.Equal(t, ":memory:", dsn(":memory:"))
	require.Equal(t, "file:x.db?mode=ro", dsn("file:x.db?mode=ro"))
	require.Equal(t, "file:/tmp/a.db?_pragma=busy_timeout(5000)", dsn("/tmp/a.db"))
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := Open(ctx, filepath.Join(t.TempDir(), "nested", "dir", "app.db"))
	require.NoError(t, err)
	defer db.Close()

	require.True(t, tableExists(t, db, "metadata"))
}
