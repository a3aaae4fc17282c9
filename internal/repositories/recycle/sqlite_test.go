package recycle

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
CREATE TABLE recycle_bin (
  object_id TEXT PRIMARY KEY,
  identity TEXT NOT NULL,
  deleted_at TIMESTAMP NOT NULL,
  purge_after TIMESTAMP NOT NULL,
  original_path TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT ''
);
`)
	require.NoError(t, err)

	return db
}

func sampleEntry(objectID string, deletedAt time.Time) *models.RecycleEntry {
	return &models.RecycleEntry{
		ObjectID:     objectID,
		Identity:     models.IdentityReal,
		DeletedAt:    deletedAt,
		PurgeAfter:   deletedAt.Add(7 * 24 * time.Hour),
		OriginalPath: "real/" + objectID + ".enc",
		Reason:       "user-delete",
	}
}

func TestInsertAndGet(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	deleted := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, sampleEntry("o1", deleted)))

	got, err := r.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.IdentityReal, got.Identity)
	assert.Equal(t, "real/o1.enc", got.OriginalPath)
	assert.Equal(t, "user-delete", got.Reason)
	assert.True(t, got.PurgeAfter.After(got.DeletedAt))

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, sampleEntry("old", base)))
	require.NoError(t, r.Insert(ctx, sampleEntry("new", base.Add(time.Hour))))

	got, err := r.List(ctx, models.IdentityReal)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].ObjectID)
	assert.Equal(t, "old", got[1].ObjectID)

	decoy, err := r.List(ctx, models.IdentityDecoy)
	require.NoError(t, err)
	assert.Empty(t, decoy)
}

func TestListExpired(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, sampleEntry("due", base)))
	require.NoError(t, r.Insert(ctx, sampleEntry("fresh", base.Add(48*time.Hour))))

	// only entries at or past purge_after come back
	got, err := r.ListExpired(ctx, base.Add(7*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "due", got[0].ObjectID)

	none, err := r.ListExpired(ctx, base)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, sampleEntry("o1", time.Now().UTC())))
	require.NoError(t, r.Delete(ctx, "o1"))

	_, err := r.Get(ctx, "o1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
