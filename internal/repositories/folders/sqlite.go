package folders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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

func (r *SQLiteRepository) Insert(ctx context.Context, f *models.Folder) error {
	query := `INSERT INTO folders (id, name, identity, parent_id, color, icon, sort_order, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var parentID any
	if f.ParentID != nil {
		parentID = *f.ParentID
	}

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, string(f.Identity), parentID, f.Color, f.Icon, f.SortOrder, f.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func scanFolder(row interface{ Scan(...any) error }) (*models.Folder, error) {
	f := &models.Folder{}
	var identity string
	var parentID sql.NullString
	err := row.Scan(&f.ID, &f.Name, &identity, &parentID, &f.Color, &f.Icon, &f.SortOrder, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	f.Identity = models.VaultIdentity(identity)
	if parentID.Valid {
		s := parentID.String
		f.ParentID = &s
	}
	return f, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Folder, error) {
	query := `SELECT id, name, identity, parent_id, color, icon, sort_order, created_at
	          FROM folders WHERE id = ?`

	f, err := scanFolder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) List(ctx context.Context, identity models.VaultIdentity, parentID *string) ([]models.Folder, error) {
	query := `SELECT id, name, identity, parent_id, color, icon, sort_order, created_at
	          FROM folders WHERE identity = ?`
	args := []any{string(identity)}

	if parentID != nil {
		query += ` AND parent_id = ?`
		args = append(args, *parentID)
	} else {
		query += ` AND parent_id IS NULL`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.Folder
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id string, u Update) error {
	var sets []string
	var args []any

	if u.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *u.Name)
	}
	if u.Color != nil {
		sets = append(sets, "color = ?")
		args = append(args, *u.Color)
	}
	if u.Icon != nil {
		sets = append(sets, "icon = ?")
		args = append(args, *u.Icon)
	}
	if u.SortOrder != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *u.SortOrder)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		`UPDATE folders SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, identity models.VaultIdentity) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM folders WHERE identity = ?`, string(identity)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ReparentChildren(ctx context.Context, id string, newParent *string) error {
	var parent any
	if newParent != nil {
		parent = *newParent
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE folders SET parent_id = ? WHERE parent_id = ?`, parent, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
