package repositories

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
)

// CloseoutStore persists the non-relational period-close state: period lock
// status, run records and FX revaluation snapshots, all keyed by
// (tenant, company, period). Run appends are insert-only so concurrent
// appends into the same bucket never race on a read-modify-write.
type CloseoutStore interface {
	// GetPeriodState retrieves the stored lock state of a period.
	// Returns apperrors.ErrNotFound when no state was ever recorded.
	GetPeriodState(ctx context.Context, tenantID, companyID string, period domain.Period) (*domain.PeriodState, error)

	// SetPeriodState stores the lock state of a period, last-writer-wins.
	SetPeriodState(ctx context.Context, tenantID, companyID string, period domain.Period, state domain.PeriodState) error

	// AppendRun appends a run record to the period's bucket.
	AppendRun(ctx context.Context, tenantID, companyID string, period domain.Period, run domain.RunRecord) error

	// ListRuns retrieves all run records of a period's bucket in append order.
	ListRuns(ctx context.Context, tenantID, companyID string, period domain.Period) ([]domain.RunRecord, error)

	// SaveRevaluationSnapshot stores the revaluation history record for the
	// snapshot's (company, period), overwriting any previous one.
	SaveRevaluationSnapshot(ctx context.Context, snapshot domain.RevaluationSnapshot) error

	// FindRevaluationSnapshot retrieves the stored snapshot for a period.
	// Returns apperrors.ErrNotFound when none exists.
	FindRevaluationSnapshot(ctx context.Context, tenantID, companyID string, period domain.Period) (*domain.RevaluationSnapshot, error)
}
