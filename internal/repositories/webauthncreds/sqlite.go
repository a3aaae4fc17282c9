package webauthncreds

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/dbx"
	"github.com/vantavault/vantavault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, c *models.WebAuthnCredential) error {
	query := `INSERT INTO webauthn_credentials (user_id, credential_id, public_key, sign_count, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		c.UserID, c.CredentialID, c.PublicKey, c.SignCount, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByUser(ctx context.Context, userID string) ([]models.WebAuthnCredential, error) {
	query := `SELECT user_id, credential_id, public_key, sign_count, created_at, last_used_at
	          FROM webauthn_credentials WHERE user_id = ?`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.WebAuthnCredential
	for rows.Next() {
		var c models.WebAuthnCredential
		var lastUsed sql.NullTime
		if err := rows.Scan(&c.UserID, &c.CredentialID, &c.PublicKey, &c.SignCount, &c.CreatedAt, &lastUsed); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if lastUsed.Valid {
			t := lastUsed.Time
			c.LastUsedAt = &t
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) UpdateSignCount(ctx context.Context, credentialID []byte, signCount int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE webauthn_credentials SET sign_count = ?, last_used_at = ? WHERE credential_id = ?`,
		signCount, now, credentialID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
