package objects

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

const objectColumns = `id, identity, display_name, storage_path, thumbnail_path, folder_id,
	byte_size, mime_type, wrapped_key, key_nonce, uploaded_at, last_accessed_at,
	access_count, hidden, deleted, deleted_at`

func scanObject(row interface{ Scan(...any) error }) (*models.StoredObject, error) {
	o := &models.StoredObject{}
	var (
		identity       string
		thumbnailPath  sql.NullString
		lastAccessedAt sql.NullTime
		deletedAt      sql.NullTime
	)
	err := row.Scan(&o.ID, &identity, &o.DisplayName, &o.StoragePath, &thumbnailPath,
		&o.FolderID, &o.ByteSize, &o.MimeType, &o.WrappedKey, &o.KeyNonce,
		&o.UploadedAt, &lastAccessedAt, &o.AccessCount, &o.Hidden, &o.Deleted, &deletedAt)
	if err != nil {
		return nil, err
	}
	o.Identity = models.VaultIdentity(identity)
	if thumbnailPath.Valid {
		s := thumbnailPath.String
		o.ThumbnailPath = &s
	}
	if lastAccessedAt.Valid {
		t := lastAccessedAt.Time
		o.LastAccessedAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		o.DeletedAt = &t
	}
	return o, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, o *models.StoredObject) error {
	query := `INSERT INTO objects (` + objectColumns + `)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var thumbnailPath any
	if o.ThumbnailPath != nil {
		thumbnailPath = *o.ThumbnailPath
	}

	_, err := r.db.ExecContext(ctx, query,
		o.ID, string(o.Identity), o.DisplayName, o.StoragePath, thumbnailPath,
		o.FolderID, o.ByteSize, o.MimeType, o.WrappedKey, o.KeyNonce,
		o.UploadedAt, nil, o.AccessCount, o.Hidden, o.Deleted, nil)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, identity models.VaultIdentity, id string) (*models.StoredObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE id = ? AND identity = ?`

	o, err := scanObject(r.db.QueryRowContext(ctx, query, id, string(identity)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.StoredObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects WHERE id = ?`

	o, err := scanObject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) List(ctx context.Context, identity models.VaultIdentity, folderID string, includeHidden bool, limit int) ([]models.StoredObject, error) {
	query := `SELECT ` + objectColumns + ` FROM objects
	          WHERE identity = ? AND folder_id = ? AND deleted = 0`
	args := []any{string(identity), folderID}

	if !includeHidden {
		query += ` AND hidden = 0`
	}
	query += ` ORDER BY uploaded_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.StoredObject
	for rows.Next() {
		o, err := scanObject(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE objects SET deleted = 1, deleted_at = ? WHERE id = ? AND deleted = 0`, now, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ClearDeleted(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE objects SET deleted = 0, deleted_at = NULL WHERE id = ? AND deleted = 1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) TouchAccess(ctx context.Context, id string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE objects SET access_count = access_count + 1, last_accessed_at = ? WHERE id = ?`, now, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE objects SET hidden = ? WHERE id = ?`, hidden, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ReassignFolder(ctx context.Context, identity models.VaultIdentity, fromFolder, toFolder string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE objects SET folder_id = ? WHERE identity = ? AND folder_id = ?`,
		toFolder, string(identity), fromFolder)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Stats(ctx context.Context, identity models.VaultIdentity) (*models.VaultStats, error) {
	// MIN/MAX aggregates lose the column's declared type under SQLite, so
	// oldest/newest are fetched via ordered subqueries that keep it
	query := `SELECT COUNT(*), COALESCE(SUM(byte_size), 0), COUNT(DISTINCT folder_id),
	                 (SELECT uploaded_at FROM objects WHERE identity = ? AND deleted = 0
	                  ORDER BY uploaded_at ASC LIMIT 1),
	                 (SELECT uploaded_at FROM objects WHERE identity = ? AND deleted = 0
	                  ORDER BY uploaded_at DESC LIMIT 1)
	          FROM objects WHERE identity = ? AND deleted = 0`

	stats := &models.VaultStats{}
	var oldest, newest sql.NullTime
	err := r.db.QueryRowContext(ctx, query, string(identity), string(identity), string(identity)).Scan(
		&stats.FileCount, &stats.TotalBytes, &stats.FolderCount, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if oldest.Valid {
		t := oldest.Time
		stats.OldestFile = &t
	}
	if newest.Valid {
		t := newest.Time
		stats.NewestFile = &t
	}
	return stats, nil
}
