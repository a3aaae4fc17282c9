package shares

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE share_links (
  token TEXT PRIMARY KEY,
  object_id TEXT NOT NULL,
  expires_at TIMESTAMP NOT NULL,
  view_count INTEGER NOT NULL DEFAULT 0,
  max_views INTEGER NOT NULL DEFAULT 1,
  password_hash TEXT,
  wrapped_key BLOB NOT NULL,
  key_nonce BLOB NOT NULL,
  created_at TIMESTAMP NOT NULL,
  last_accessed_at TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func sampleShare(token string, expiresAt time.Time, maxViews int) *models.ShareToken {
	return &models.ShareToken{
		Token:      token,
		ObjectID:   "obj1",
		ExpiresAt:  expiresAt,
		MaxViews:   maxViews,
		WrappedKey: []byte{0xAA},
		KeyNonce:   []byte{0xBB},
		CreatedAt:  expiresAt.Add(-24 * time.Hour),
	}
}

func TestInsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	s := sampleShare("tok1", expires, 3)
	hash := "pbkdf2-hash"
	s.PasswordHash = &hash
	require.NoError(t, r.Insert(ctx, s))

	got, err := r.Get(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, "obj1", got.ObjectID)
	assert.Equal(t, 3, got.MaxViews)
	assert.Equal(t, 0, got.ViewCount)
	require.NotNil(t, got.PasswordHash)
	assert.Equal(t, hash, *got.PasswordHash)
	assert.Nil(t, got.LastAccessedAt)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestConsumeView(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	expires := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, sampleShare("tok1", expires, 2)))

	now := expires.Add(-time.Hour)
	ok, err := r.ConsumeView(ctx, "tok1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ConsumeView(ctx, "tok1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	// no views left
	ok, err = r.ConsumeView(ctx, "tok1", now)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := r.Get(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.ViewCount)
	require.NotNil(t, got.LastAccessedAt)
}

func TestConsumeView_UnknownToken(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	ok, err := r.ConsumeView(context.Background(), "missing", time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleShare("tok1", time.Now().UTC(), 1)))
	require.NoError(t, r.Delete(ctx, "tok1"))

	_, err := r.Get(ctx, "tok1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteExpired(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, sampleShare("old1", now.Add(-time.Hour), 1)))
	require.NoError(t, r.Insert(ctx, sampleShare("old2", now, 1)))
	require.NoError(t, r.Insert(ctx, sampleShare("live", now.Add(time.Hour), 1)))

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = r.Get(ctx, "live")
	require.NoError(t, err)
}

func TestDeleteForObject(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, r.Insert(ctx, sampleShare("tok1", expires, 1)))
	require.NoError(t, r.Insert(ctx, sampleShare("tok2", expires, 1)))
	other := sampleShare("tok3", expires, 1)
	other.ObjectID = "obj2"
	require.NoError(t, r.Insert(ctx, other))

	require.NoError(t, r.DeleteForObject(ctx, "obj1"))

	_, err := r.Get(ctx, "tok1")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.Get(ctx, "tok2")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = r.Get(ctx, "tok3")
	require.NoError(t, err)
}
