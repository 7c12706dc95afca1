package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/middleware"
)

// runLedgerService reads and compensates the append-only run ledger.
type runLedgerService struct {
	closeout   portsrepo.CloseoutStore
	companySvc portssvc.CompanySvcFacade
}

// NewRunLedgerService creates a new run ledger service.
func NewRunLedgerService(closeout portsrepo.CloseoutStore, companySvc portssvc.CompanySvcFacade) portssvc.RunLedgerSvcFacade {
	return &runLedgerService{closeout: closeout, companySvc: companySvc}
}

var _ portssvc.RunLedgerSvcFacade = (*runLedgerService)(nil)

// ListRuns retrieves a period's run records in append order, optionally
// filtered by type.
func (s *runLedgerService) ListRuns(ctx context.Context, tenantID, companyID string, period domain.Period, runType *domain.RunType) ([]domain.RunRecord, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	runs, err := s.closeout.ListRuns(ctx, tenantID, companyID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for %s: %w", period, err)
	}
	if runType == nil {
		return runs, nil
	}

	filtered := make([]domain.RunRecord, 0, len(runs))
	for _, r := range runs {
		if r.Type == *runType {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// RollbackRun appends a compensating record referencing the original run. The
// original record is never deleted and the postings it produced are never
// auto-reversed; reversing those is a separate, deliberate journal operation.
func (s *runLedgerService) RollbackRun(ctx context.Context, tenantID, companyID string, period domain.Period, runID, actor string) (*domain.RunRecord, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	runs, err := s.ListRuns(ctx, tenantID, companyID, period, nil)
	if err != nil {
		return nil, err
	}

	var target *domain.RunRecord
	for i := range runs {
		if runs[i].RunID == runID {
			target = &runs[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: run %s in period %s", apperrors.ErrNotFound, runID, period)
	}
	if target.Type == domain.RunRollback {
		return nil, fmt.Errorf("%w: run %s is itself a rollback marker", apperrors.ErrValidation, runID)
	}
	for _, r := range runs {
		if r.Type == domain.RunRollback && r.Detail.RollbackOf == runID {
			return nil, fmt.Errorf("%w: run %s is already rolled back", apperrors.ErrConflict, runID)
		}
	}

	rollback := domain.RunRecord{
		RunID: uuid.NewString(),
		Type:  domain.RunRollback,
		At:    time.Now().UTC(),
		Actor: actor,
		Detail: domain.RunDetail{
			RollbackOf:  runID,
			Description: fmt.Sprintf("rollback of %s run %s", target.Type, runID),
		},
	}
	if err := s.closeout.AppendRun(ctx, tenantID, companyID, period, rollback); err != nil {
		logger.Error("Failed to append rollback record", slog.String("run_id", runID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to append rollback record: %w", err)
	}

	logger.Info("Run rolled back", slog.String("run_id", runID), slog.String("rollback_id", rollback.RunID), slog.String("period", period.String()))
	return &rollback, nil
}
