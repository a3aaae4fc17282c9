package attempts

import (
	"context"
	"time"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// RecordFailure bumps the failure count for an address inside the
	// rolling window (a stale window restarts at 1) and returns the new
	// count. The increment is a single UPSERT so concurrent failures from
	// one address cannot race past the lockout threshold.
	RecordFailure(ctx context.Context, addr string, now time.Time, window time.Duration) (int, error)

	// Block sets the address's blocked_until marker.
	Block(ctx context.Context, addr string, until time.Time) error

	// Get returns the record for an address, or common.ErrNotFound.
	Get(ctx context.Context, addr string) (*models.FailedAttempt, error)

	// Reset clears the failure count and any block for an address.
	Reset(ctx context.Context, addr string) error
}
