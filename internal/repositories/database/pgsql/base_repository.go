package pgsql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/closepilot/ledgercore/internal/apperrors"
)

// uniqueViolation is the Postgres SQLSTATE for a unique-constraint breach.
const uniqueViolation = "23505"

// BaseRepository carries the shared pool and transaction helpers embedded by
// every pgx repository in this package.
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// Begin starts a transaction on the shared pool.
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, markTransient(err, "failed to begin transaction")
	}
	return tx, nil
}

// Commit finishes a transaction started with Begin.
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return markTransient(err, "failed to commit transaction")
	}
	return nil
}

// Rollback is safe to defer past a commit: an already-finished transaction
// is not treated as a failure.
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, sql.ErrTxDone) && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, which the repositories surface as apperrors.ErrDuplicate.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// markTransient tags connection-class and timeout failures with
// apperrors.ErrTransient so services can retry the unit of work. Other
// failures pass through with only the message added.
func markTransient(err error, message string) error {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", message, apperrors.ErrTransient, err)
	}
	return apperrors.NewAppError(500, message, err)
}
