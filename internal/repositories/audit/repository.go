package audit

import (
	"context"

	"github.com/vantavault/vantavault/internal/models"
)

type Repository interface {
	// Insert appends an event. There is no update or delete: the log is
	// append-only from the application's point of view.
	Insert(ctx context.Context, e *models.AuditEvent) error

	// Recent returns the newest events, optionally filtered by vault
	// identity (nil = all).
	Recent(ctx context.Context, limit int, identity *models.VaultIdentity) ([]models.AuditEvent, error)
}
