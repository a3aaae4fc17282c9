package recycle

import (
	"context"
	"time"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// Insert adds the pending-purge record created on soft-delete.
	Insert(ctx context.Context, e *models.RecycleEntry) error

	// Get returns the entry for an object, or common.ErrNotFound.
	Get(ctx context.Context, objectID string) (*models.RecycleEntry, error)

	// Delete removes the entry (on restore or purge).
	Delete(ctx context.Context, objectID string) error

	// List returns a vault's recycle-bin contents, most recent first.
	List(ctx context.Context, identity models.VaultIdentity) ([]models.RecycleEntry, error)

	// ListExpired returns entries whose purge_after is at or before now.
	ListExpired(ctx context.Context, now time.Time) ([]models.RecycleEntry, error)
}
