package webauthncreds

import (
	"context"
	"time"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// Insert stores a credential handed back by the external verifier.
	Insert(ctx context.Context, c *models.WebAuthnCredential) error

	// GetByUser returns all credentials registered for a user id.
	GetByUser(ctx context.Context, userID string) ([]models.WebAuthnCredential, error)

	// UpdateSignCount records the verifier's new signature counter and
	// last-used time after a successful authentication.
	UpdateSignCount(ctx context.Context, credentialID []byte, signCount int64, now time.Time) error
}
