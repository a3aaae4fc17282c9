package shares

import (
	"context"
	"database/sql"
	"errors"
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

func (r *SQLiteRepository) Insert(ctx context.Context, s *models.ShareToken) error {
	query := `INSERT INTO share_links (token, object_id, expires_at, view_count, max_views,
	                                   password_hash, wrapped_key, key_nonce, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var passwordHash any
	if s.PasswordHash != nil {
		passwordHash = *s.PasswordHash
	}

	_, err := r.db.ExecContext(ctx, query,
		s.Token, s.ObjectID, s.ExpiresAt, s.ViewCount, s.MaxViews,
		passwordHash, s.WrappedKey, s.KeyNonce, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, token string) (*models.ShareToken, error) {
	query := `SELECT token, object_id, expires_at, view_count, max_views, password_hash,
	                 wrapped_key, key_nonce, created_at, last_accessed_at
	          FROM share_links WHERE token = ?`

	s := &models.ShareToken{}
	var passwordHash sql.NullString
	var lastAccessedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&s.Token, &s.ObjectID, &s.ExpiresAt, &s.ViewCount, &s.MaxViews,
		&passwordHash, &s.WrappedKey, &s.KeyNonce, &s.CreatedAt, &lastAccessedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if passwordHash.Valid {
		h := passwordHash.String
		s.PasswordHash = &h
	}
	if lastAccessedAt.Valid {
		t := lastAccessedAt.Time
		s.LastAccessedAt = &t
	}
	return s, nil
}

func (r *SQLiteRepository) ConsumeView(ctx context.Context, token string, now time.Time) (bool, error) {
	// the WHERE clause makes check-and-increment a single atomic statement
	res, err := r.db.ExecContext(ctx,
		`UPDATE share_links
		 SET view_count = view_count + 1, last_accessed_at = ?
		 WHERE token = ? AND view_count < max_views`, now, token)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE expires_at <= ?`, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) DeleteForObject(ctx context.Context, objectID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM share_links WHERE object_id = ?`, objectID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
