package objects

import (
	"context"
	"time"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// Insert adds a catalog row for a freshly stored object.
	Insert(ctx context.Context, o *models.StoredObject) error

	// Get returns an object by id within a vault namespace, soft-deleted
	// rows included. common.ErrNotFound if absent.
	Get(ctx context.Context, identity models.VaultIdentity, id string) (*models.StoredObject, error)

	// GetByID returns an object by id regardless of vault, for restore and
	// share paths that carry no identity.
	GetByID(ctx context.Context, id string) (*models.StoredObject, error)

	// List returns active (not soft-deleted) objects in a folder, newest
	// upload first. Hidden objects are excluded unless includeHidden.
	// limit <= 0 means no limit.
	List(ctx context.Context, identity models.VaultIdentity, folderID string, includeHidden bool, limit int) ([]models.StoredObject, error)

	// MarkDeleted flags an active object as soft-deleted. Returns
	// common.ErrNotFound when the object is absent or already deleted.
	MarkDeleted(ctx context.Context, id string, now time.Time) error

	// ClearDeleted reverses MarkDeleted.
	ClearDeleted(ctx context.Context, id string) error

	// Delete removes the catalog row permanently.
	Delete(ctx context.Context, id string) error

	// TouchAccess bumps access_count and last_accessed_at.
	TouchAccess(ctx context.Context, id string, now time.Time) error

	// SetHidden toggles an object's hidden flag.
	SetHidden(ctx context.Context, id string, hidden bool) error

	// ReassignFolder moves every object in a folder to another folder.
	ReassignFolder(ctx context.Context, identity models.VaultIdentity, fromFolder, toFolder string) error

	// Stats summarizes active objects in a vault.
	Stats(ctx context.Context, identity models.VaultIdentity) (*models.VaultStats, error)
}
