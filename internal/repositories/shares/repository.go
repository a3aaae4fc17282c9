package shares

import (
	"context"
	"time"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// Insert adds a share token row.
	Insert(ctx context.Context, s *models.ShareToken) error

	// Get returns a token row, or common.ErrNotFound.
	Get(ctx context.Context, token string) (*models.ShareToken, error)

	// ConsumeView atomically increments the view count if and only if it is
	// still below max_views, returning false when the limit is already
	// reached. This is the single read-modify-write that must not race:
	// two concurrent redemptions of a one-view token get exactly one true.
	ConsumeView(ctx context.Context, token string, now time.Time) (bool, error)

	// Delete removes a token row.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes tokens with expires_at at or before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// DeleteForObject removes all tokens pointing at an object (purge path).
	DeleteForObject(ctx context.Context, objectID string) error
}
