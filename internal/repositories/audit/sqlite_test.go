package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantavault/vantavault/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE audit_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TIMESTAMP NOT NULL,
  kind TEXT NOT NULL,
  success INTEGER NOT NULL,
  client_addr TEXT NOT NULL DEFAULT '',
  client_agent TEXT NOT NULL DEFAULT '',
  identity TEXT,
  failure_reason TEXT
);
`)
	require.NoError(t, err)

	return db
}

func TestInsertAndRecent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	real := models.IdentityReal
	reason := "wrong pin"

	require.NoError(t, r.Insert(ctx, &models.AuditEvent{
		Timestamp:   base,
		Kind:        models.AuditPIN,
		Success:     false,
		ClientAddr:  "10.0.0.1",
		ClientAgent: "test",

		FailureReason: &reason,
	}))
	require.NoError(t, r.Insert(ctx, &models.AuditEvent{
		Timestamp:   base.Add(time.Minute),
		Kind:        models.AuditPIN,
		Success:     true,
		ClientAddr:  "10.0.0.1",
		ClientAgent: "test",
		Identity:    &real,
	}))

	got, err := r.Recent(ctx, 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// newest first
	assert.True(t, got[0].Success)
	require.NotNil(t, got[0].Identity)
	assert.Equal(t, models.IdentityReal, *got[0].Identity)
	assert.Nil(t, got[0].FailureReason)

	assert.False(t, got[1].Success)
	assert.Nil(t, got[1].Identity)
	require.NotNil(t, got[1].FailureReason)
	assert.Equal(t, "wrong pin", *got[1].FailureReason)
}

func TestRecent_FilterAndLimit(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	real := models.IdentityReal
	decoy := models.IdentityDecoy

	for i := 0; i < 5; i++ {
		identity := &real
		if i%2 == 1 {
			identity = &decoy
		}
		require.NoError(t, r.Insert(ctx, &models.AuditEvent{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Kind:      models.AuditObjectLifecycle,
			Success:   true,
			Identity:  identity,
		}))
	}

	got, err := r.Recent(ctx, 10, &decoy)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, models.IdentityDecoy, *e.Identity)
	}

	got, err = r.Recent(ctx, 3, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}
