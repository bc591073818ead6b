package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "codelife.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	assert.True(t, tableExists(t, db, "goose_db_version"))
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, RunMigrations(context.Background(), db))
	assert.True(t, tableExists(t, db, "metadata"))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := withTx(ctx, db, func(tx *sql.Tx) error {
		require.NoError(t, NewMetadataRepository(tx).Put(ctx, map[string][]byte{"k": []byte("v")}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := NewMetadataRepository(db).Values(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestWithTx_RollsBackAndRepanics(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = withTx(ctx, db, func(tx *sql.Tx) error {
			_ = NewMetadataRepository(tx).Put(ctx, map[string][]byte{"k": []byte("v")})
			panic("kaboom")
		})
	})

	v, err := NewMetadataRepository(db).Values(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}
