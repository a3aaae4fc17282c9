package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/dbx"
	"github.com/vantavault/vantavault/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, identity models.VaultIdentity) (*models.Credential, error) {
	query := `SELECT identity, pin_hash, wrapped_master_key, wrap_nonce,
	                 server_wrapped_key, server_wrap_nonce, key_salt, iterations, updated_at
	          FROM credentials WHERE identity = ?`

	cred := &models.Credential{}
	var identityStr string
	err := r.db.QueryRowContext(ctx, query, string(identity)).Scan(
		&identityStr, &cred.PINHash, &cred.WrappedMasterKey, &cred.WrapNonce,
		&cred.ServerWrappedKey, &cred.ServerWrapNonce,
		&cred.KeySalt, &cred.Iterations, &cred.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	cred.Identity = models.VaultIdentity(identityStr)

	return cred, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, cred *models.Credential) error {
	query := `INSERT INTO credentials (identity, pin_hash, wrapped_master_key, wrap_nonce,
	                                   server_wrapped_key, server_wrap_nonce, key_salt, iterations, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(identity) DO UPDATE SET
	              pin_hash = excluded.pin_hash,
	              wrapped_master_key = excluded.wrapped_master_key,
	              wrap_nonce = excluded.wrap_nonce,
	              server_wrapped_key = excluded.server_wrapped_key,
	              server_wrap_nonce = excluded.server_wrap_nonce,
	              key_salt = excluded.key_salt,
	              iterations = excluded.iterations,
	              updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query,
		string(cred.Identity), cred.PINHash, cred.WrappedMasterKey, cred.WrapNonce,
		cred.ServerWrappedKey, cred.ServerWrapNonce,
		cred.KeySalt, cred.Iterations, cred.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Exists(ctx context.Context, identity models.VaultIdentity) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE identity = ?`, string(identity)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n > 0, nil
}
