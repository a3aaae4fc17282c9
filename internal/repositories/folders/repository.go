package folders

import (
	"context"

	"github.com/vantavault/vantavault/internal/models"
)

// Update carries the mutable folder attributes for Rename-style edits.
// Nil fields are left unchanged.
type Update struct {
	Name      *string
	Color     *string
	Icon      *string
	SortOrder *int
}

type Repository interface {
	// Insert adds a folder row.
	Insert(ctx context.Context, f *models.Folder) error

	// Get returns a folder by id, or common.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Folder, error)

	// List returns a vault's folders under the given parent (nil = roots),
	// ordered by sort order then name.
	List(ctx context.Context, identity models.VaultIdentity, parentID *string) ([]models.Folder, error)

	// Update applies the non-nil fields of u to a folder.
	Update(ctx context.Context, id string, u Update) error

	// Delete removes the folder row.
	Delete(ctx context.Context, id string) error

	// ReparentChildren moves a folder's direct child folders to a new
	// parent (nil = root), so deleting it never leaves dangling parent ids.
	ReparentChildren(ctx context.Context, id string, newParent *string) error

	// Count returns the number of folders in a vault.
	Count(ctx context.Context, identity models.VaultIdentity) (int64, error)
}
