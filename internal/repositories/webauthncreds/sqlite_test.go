package webauthncreds

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
CREATE TABLE webauthn_credentials (
  user_id TEXT NOT NULL,
  credential_id BLOB PRIMARY KEY,
  public_key BLOB NOT NULL,
  sign_count INTEGER NOT NULL DEFAULT 0,
  created_at TIMESTAMP NOT NULL,
  last_used_at TIMESTAMP
);
`)
	require.NoError(t, err)

	return db
}

func TestInsertAndGetByUser(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.Insert(ctx, &models.WebAuthnCredential{
		UserID:       "real",
		CredentialID: []byte{0x01, 0x02},
		PublicKey:    []byte{0xAA},
		SignCount:    0,
		CreatedAt:    created,
	}))
	require.NoError(t, r.Insert(ctx, &models.WebAuthnCredential{
		UserID:       "real",
		CredentialID: []byte{0x03, 0x04},
		PublicKey:    []byte{0xBB},
		SignCount:    7,
		CreatedAt:    created,
	}))

	got, err := r.GetByUser(ctx, "real")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].LastUsedAt)

	none, err := r.GetByUser(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateSignCount(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	credID := []byte{0x01, 0x02}
	require.NoError(t, r.Insert(ctx, &models.WebAuthnCredential{
		UserID:       "real",
		CredentialID: credID,
		PublicKey:    []byte{0xAA},
		CreatedAt:    time.Now().UTC(),
	}))

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, r.UpdateSignCount(ctx, credID, 3, now))

	got, err := r.GetByUser(ctx, "real")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(3), got[0].SignCount)
	require.NotNil(t, got[0].LastUsedAt)

	assert.ErrorIs(t, r.UpdateSignCount(ctx, []byte{0xFF}, 1, now), common.ErrNotFound)
}
