package repomanager

import (
	"context"
	"database/sql"

	"github.com/vantavault/vantavault/internal/dbx"
	"github.com/vantavault/vantavault/internal/repositories/attempts"
	"github.com/vantavault/vantavault/internal/repositories/audit"
	"github.com/vantavault/vantavault/internal/repositories/credentials"
	"github.com/vantavault/vantavault/internal/repositories/folders"
	"github.com/vantavault/vantavault/internal/repositories/objects"
	"github.com/vantavault/vantavault/internal/repositories/recycle"
	"github.com/vantavault/vantavault/internal/repositories/shares"
	"github.com/vantavault/vantavault/internal/repositories/webauthncreds"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can use the same construction inside and outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Attempts(db dbx.DBTX) attempts.Repository
	Objects(db dbx.DBTX) objects.Repository
	Folders(db dbx.DBTX) folders.Repository
	Recycle(db dbx.DBTX) recycle.Repository
	Shares(db dbx.DBTX) shares.Repository
	Audit(db dbx.DBTX) audit.Repository
	WebAuthnCreds(db dbx.DBTX) webauthncreds.Repository
}
