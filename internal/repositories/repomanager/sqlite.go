// Package repomanager provides a concrete RepositoryManager for SQLite,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/vantavault/vantavault/internal/dbx"
	"github.com/vantavault/vantavault/internal/migrations"
	"github.com/vantavault/vantavault/internal/repositories/attempts"
	"github.com/vantavault/vantavault/internal/repositories/audit"
	"github.com/vantavault/vantavault/internal/repositories/credentials"
	"github.com/vantavault/vantavault/internal/repositories/folders"
	"github.com/vantavault/vantavault/internal/repositories/objects"
	"github.com/vantavault/vantavault/internal/repositories/recycle"
	"github.com/vantavault/vantavault/internal/repositories/shares"
	"github.com/vantavault/vantavault/internal/repositories/webauthncreds"
)

// SQLiteRepositoryManager vends SQLite-backed repository implementations
// and exposes a schema migration hook.
type SQLiteRepositoryManager struct{}

func NewSQLiteRepositoryManager() *SQLiteRepositoryManager {
	return &SQLiteRepositoryManager{}
}

func (m *SQLiteRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Attempts(db dbx.DBTX) attempts.Repository {
	return attempts.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Objects(db dbx.DBTX) objects.Repository {
	return objects.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Folders(db dbx.DBTX) folders.Repository {
	return folders.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Recycle(db dbx.DBTX) recycle.Repository {
	return recycle.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Shares(db dbx.DBTX) shares.Repository {
	return shares.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) Audit(db dbx.DBTX) audit.Repository {
	return audit.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) WebAuthnCreds(db dbx.DBTX) webauthncreds.Repository {
	return webauthncreds.NewSQLiteRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// Open opens (creating if needed) the catalog database and runs migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, RepositoryManager, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	// modernc/sqlite serializes writes; one writer connection avoids
	// SQLITE_BUSY under concurrent request handling
	db.SetMaxOpenConns(1)

	m := NewSQLiteRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, m, nil
}
