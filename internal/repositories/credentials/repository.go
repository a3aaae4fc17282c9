package credentials

import (
	"context"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// Get returns the active credential for an identity, or
	// common.ErrNotFound if none has been set.
	Get(ctx context.Context, identity models.VaultIdentity) (*models.Credential, error)

	// Upsert atomically replaces the credential for its identity.
	Upsert(ctx context.Context, cred *models.Credential) error

	// Exists reports whether a credential has been set for the identity.
	Exists(ctx context.Context, identity models.VaultIdentity) (bool, error)
}
