package credentials

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
CREATE TABLE credentials (
  identity TEXT PRIMARY KEY,
  pin_hash TEXT NOT NULL,
  wrapped_master_key BLOB NOT NULL,
  wrap_nonce BLOB NOT NULL,
  server_wrapped_key BLOB NOT NULL,
  server_wrap_nonce BLOB NOT NULL,
  key_salt BLOB NOT NULL,
  iterations INTEGER NOT NULL,
  updated_at TIMESTAMP NOT NULL
);
`)
	require.NoError(t, err)

	return db
}

func sampleCredential(identity models.VaultIdentity) *models.Credential {
	return &models.Credential{
		Identity:         identity,
		PINHash:          "hash-v1",
		WrappedMasterKey: []byte{0x01},
		WrapNonce:        []byte{0x02},
		ServerWrappedKey: []byte{0x03},
		ServerWrapNonce:  []byte{0x04},
		KeySalt:          []byte{0x05},
		Iterations:       100000,
		UpdatedAt:        time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, sampleCredential(models.IdentityReal)))

	got, err := r.Get(ctx, models.IdentityReal)
	require.NoError(t, err)
	assert.Equal(t, "hash-v1", got.PINHash)
	assert.Equal(t, []byte{0x01}, got.WrappedMasterKey)
	assert.Equal(t, []byte{0x03}, got.ServerWrappedKey)
	assert.Equal(t, 100000, got.Iterations)

	// a second upsert for the same identity replaces the row
	updated := sampleCredential(models.IdentityReal)
	updated.PINHash = "hash-v2"
	updated.WrappedMasterKey = []byte{0x09}
	require.NoError(t, r.Upsert(ctx, updated))

	got, err = r.Get(ctx, models.IdentityReal)
	require.NoError(t, err)
	assert.Equal(t, "hash-v2", got.PINHash)
	assert.Equal(t, []byte{0x09}, got.WrappedMasterKey)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM credentials`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestGet_Unknown(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := r.Get(context.Background(), models.IdentityDecoy)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestExists(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	ok, err := r.Exists(ctx, models.IdentityReal)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Upsert(ctx, sampleCredential(models.IdentityReal)))

	ok, err = r.Exists(ctx, models.IdentityReal)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Exists(ctx, models.IdentityDecoy)
	require.NoError(t, err)
	assert.False(t, ok)
}
