package attempts

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantavault/vantavault/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE failed_attempts (
  client_addr TEXT PRIMARY KEY,
  attempts INTEGER NOT NULL DEFAULT 1,
  window_start TIMESTAMP NOT NULL,
  blocked_until TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func TestRecordFailure_Increments(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	for want := 1; want <= 3; want++ {
		n, err := r.RecordFailure(ctx, "10.0.0.1", now, time.Hour)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	// a different address keeps its own counter
	n, err := r.RecordFailure(ctx, "10.0.0.2", now, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordFailure_WindowRollover(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	_, err := r.RecordFailure(ctx, "10.0.0.1", now, time.Hour)
	require.NoError(t, err)
	_, err = r.RecordFailure(ctx, "10.0.0.1", now.Add(time.Minute), time.Hour)
	require.NoError(t, err)

	// past the window the counter restarts at 1
	later := now.Add(61 * time.Minute)
	n, err := r.RecordFailure(ctx, "10.0.0.1", later, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec, err := r.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, rec.WindowStart.After(now))
}

func TestBlockAndReset(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	_, err := r.RecordFailure(ctx, "10.0.0.1", now, time.Hour)
	require.NoError(t, err)

	until := now.Add(time.Hour)
	require.NoError(t, r.Block(ctx, "10.0.0.1", until))

	rec, err := r.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.NotNil(t, rec.BlockedUntil)
	assert.Equal(t, 1, rec.Attempts)

	require.NoError(t, r.Reset(ctx, "10.0.0.1"))
	rec, err = r.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.Nil(t, rec.BlockedUntil)
	assert.Equal(t, 0, rec.Attempts)
}

func TestGet_Unknown(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), "203.0.113.9")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
