package audit

import (
	"context"
	"database/sql"
	"fmt"

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

func (r *SQLiteRepository) Insert(ctx context.Context, e *models.AuditEvent) error {
	query := `INSERT INTO audit_log (ts, kind, success, client_addr, client_agent, identity, failure_reason)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`

	var identity, failureReason any
	if e.Identity != nil {
		identity = string(*e.Identity)
	}
	if e.FailureReason != nil {
		failureReason = *e.FailureReason
	}

	_, err := r.db.ExecContext(ctx, query,
		e.Timestamp, string(e.Kind), e.Success, e.ClientAddr, e.ClientAgent, identity, failureReason)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Recent(ctx context.Context, limit int, identity *models.VaultIdentity) ([]models.AuditEvent, error) {
	query := `SELECT id, ts, kind, success, client_addr, client_agent, identity, failure_reason
	          FROM audit_log`
	var args []any

	if identity != nil {
		query += ` WHERE identity = ?`
		args = append(args, string(*identity))
	}
	query += ` ORDER BY ts DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []models.AuditEvent
	for rows.Next() {
		var e models.AuditEvent
		var kind string
		var identityCol, failureReason sql.NullString
		err := rows.Scan(&e.ID, &e.Timestamp, &kind, &e.Success,
			&e.ClientAddr, &e.ClientAgent, &identityCol, &failureReason)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Kind = models.AuditKind(kind)
		if identityCol.Valid {
			v := models.VaultIdentity(identityCol.String)
			e.Identity = &v
		}
		if failureReason.Valid {
			s := failureReason.String
			e.FailureReason = &s
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
