package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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

func (r *SQLiteRepository) RecordFailure(ctx context.Context, addr string, now time.Time, window time.Duration) (int, error) {
	windowFloor := now.Add(-window)

	// read-check-then-write would race under concurrent requests from one
	// address; the conditional UPSERT keeps increment-and-windowing atomic
	query := `INSERT INTO failed_attempts (client_addr, attempts, window_start)
	          VALUES (?, 1, ?)
	          ON CONFLICT(client_addr) DO UPDATE SET
	              attempts = CASE WHEN failed_attempts.window_start < ? THEN 1
	                              ELSE failed_attempts.attempts + 1 END,
	              window_start = CASE WHEN failed_attempts.window_start < ? THEN ?
	                                  ELSE failed_attempts.window_start END
	          RETURNING attempts`

	var attempts int
	err := r.db.QueryRowContext(ctx, query, addr, now, windowFloor, windowFloor, now).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return attempts, nil
}

func (r *SQLiteRepository) Block(ctx context.Context, addr string, until time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE failed_attempts SET blocked_until = ? WHERE client_addr = ?`, until, addr)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, addr string) (*models.FailedAttempt, error) {
	query := `SELECT client_addr, attempts, window_start, blocked_until
	          FROM failed_attempts WHERE client_addr = ?`

	rec := &models.FailedAttempt{}
	var blockedUntil sql.NullTime
	err := r.db.QueryRowContext(ctx, query, addr).Scan(
		&rec.ClientAddr, &rec.Attempts, &rec.WindowStart, &blockedUntil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if blockedUntil.Valid {
		t := blockedUntil.Time
		rec.BlockedUntil = &t
	}
	return rec, nil
}

func (r *SQLiteRepository) Reset(ctx context.Context, addr string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE failed_attempts SET attempts = 0, blocked_until = NULL WHERE client_addr = ?`, addr)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
