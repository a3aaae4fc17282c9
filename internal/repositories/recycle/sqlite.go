package recycle

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

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.RecycleEntry) error {
	query := `INSERT INTO recycle_bin (object_id, identity, deleted_at, purge_after, original_path, reason)
	          VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		e.ObjectID, string(e.Identity), e.DeletedAt, e.PurgeAfter, e.OriginalPath, e.Reason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanEntry(row interface{ Scan(...any) error }) (*models.RecycleEntry, error) {
	e := &models.RecycleEntry{}
	var identity string
	err := row.Scan(&e.ObjectID, &identity, &e.DeletedAt, &e.PurgeAfter, &e.OriginalPath, &e.Reason)
	if err != nil {
		return nil, err
	}
	e.Identity = models.VaultIdentity(identity)
	return e, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, objectID string) (*models.RecycleEntry, error) {
	query := `SELECT object_id, identity, deleted_at, purge_after, original_path, reason
	          FROM recycle_bin WHERE object_id = ?`

	e, err := scanEntry(r.db.QueryRowContext(ctx, query, objectID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, objectID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recycle_bin WHERE object_id = ?`, objectID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) List(ctx context.Context, identity models.VaultIdentity) ([]models.RecycleEntry, error) {
	query := `SELECT object_id, identity, deleted_at, purge_after, original_path, reason
	          FROM recycle_bin WHERE identity = ? ORDER BY deleted_at DESC`

	return r.queryEntries(ctx, query, string(identity))
}

func (r *SQLiteRepository) ListExpired(ctx context.Context, now time.Time) ([]models.RecycleEntry, error) {
	query := `SELECT object_id, identity, deleted_at, purge_after, original_path, reason
	          FROM recycle_bin WHERE purge_after <= ?`

	return r.queryEntries(ctx, query, now)
}

func (r *SQLiteRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.RecycleEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.RecycleEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
