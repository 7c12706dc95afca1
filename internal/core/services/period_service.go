package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
)

// maxAdjustmentWalk caps how many consecutive months the adjustment
// redirection will scan forward looking for an open period.
const maxAdjustmentWalk = 24

// periodService is the period registry: the lock-state machine and the
// prior-period adjustment redirection path.
type periodService struct {
	closeout   portsrepo.CloseoutStore
	journalSvc portssvc.JournalSvcFacade
	companySvc portssvc.CompanySvcFacade
}

// NewPeriodService creates a new period service.
func NewPeriodService(closeout portsrepo.CloseoutStore, journalSvc portssvc.JournalSvcFacade, companySvc portssvc.CompanySvcFacade) portssvc.PeriodSvcFacade {
	return &periodService{closeout: closeout, journalSvc: journalSvc, companySvc: companySvc}
}

var _ portssvc.PeriodSvcFacade = (*periodService)(nil)

// GetStatus returns the lock state of a period. A period with no stored
// record is open.
func (s *periodService) GetStatus(ctx context.Context, tenantID, companyID string, period domain.Period) (domain.PeriodState, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return domain.PeriodState{}, err
	}
	state, err := s.closeout.GetPeriodState(ctx, tenantID, companyID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.PeriodState{Status: domain.PeriodOpen}, nil
		}
		return domain.PeriodState{}, fmt.Errorf("failed to read period state for %s: %w", period, err)
	}
	return *state, nil
}

// Lock soft-freezes a period.
func (s *periodService) Lock(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error) {
	return s.transition(ctx, tenantID, companyID, period, domain.PeriodLocked, actor)
}

// Unlock reopens a period. This is unconditional; re-opening a closed period
// is a deliberate administrative override and is recorded as such.
func (s *periodService) Unlock(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error) {
	return s.transition(ctx, tenantID, companyID, period, domain.PeriodOpen, actor)
}

// CompleteClose marks a period closed.
func (s *periodService) CompleteClose(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error) {
	return s.transition(ctx, tenantID, companyID, period, domain.PeriodClosed, actor)
}

// transition stores the new state unconditionally, attributed and
// timestamped. Concurrent transitions resolve last-writer-wins in the store.
func (s *periodService) transition(ctx context.Context, tenantID, companyID string, period domain.Period, status domain.PeriodStatus, actor string) (domain.PeriodState, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return domain.PeriodState{}, err
	}

	state := domain.PeriodState{
		Status:    status,
		Actor:     actor,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.closeout.SetPeriodState(ctx, tenantID, companyID, period, state); err != nil {
		logger.Error("Failed to store period state", slog.String("period", period.String()), slog.String("error", err.Error()))
		return domain.PeriodState{}, fmt.Errorf("failed to store period state for %s: %w", period, err)
	}

	logger.Info("Period state changed", slog.String("period", period.String()), slog.String("status", string(status)), slog.String("actor", actor))
	return state, nil
}

// PostPriorPeriodAdjustment posts an adjustment that belongs to a closed
// period into the first open period after it, scanning at most 24 months
// forward. The redirection is recorded in the closed period's run ledger so
// the source period keeps the audit trail.
func (s *periodService) PostPriorPeriodAdjustment(ctx context.Context, tenantID, companyID string, closedPeriod domain.Period, req dto.PriorPeriodAdjustmentRequest, actor string) (*dto.PriorPeriodAdjustmentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	sourceState, err := s.GetStatus(ctx, tenantID, companyID, closedPeriod)
	if err != nil {
		return nil, err
	}
	if sourceState.Status == domain.PeriodOpen {
		return nil, fmt.Errorf("%w: period %s is open, post the entry directly", apperrors.ErrValidation, closedPeriod)
	}

	target, err := s.findOpenPeriodAfter(ctx, tenantID, companyID, closedPeriod)
	if err != nil {
		return nil, err
	}

	lines := make([]dto.EntryLineRequest, len(req.Lines))
	amount := decimal.Zero
	for i, l := range req.Lines {
		lines[i] = dto.EntryLineRequest{
			AccountID: l.AccountID,
			Debit:     l.Debit,
			Credit:    l.Credit,
			Memo:      l.Memo,
		}
		amount = amount.Add(l.Debit)
	}

	entry, err := s.journalSvc.PostEntry(ctx, tenantID, companyID, dto.PostEntryRequest{
		Date:      target.Start(),
		Memo:      req.Description,
		Reference: "ADJ-" + closedPeriod.String(),
		EntryType: "adjustment",
		Lines:     lines,
	}, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to post adjustment entry: %w", err)
	}

	run := domain.RunRecord{
		RunID: uuid.NewString(),
		Type:  domain.RunAdjustment,
		At:    time.Now().UTC(),
		Actor: actor,
		Detail: domain.RunDetail{
			EntryID:     entry.EntryID,
			PostedInto:  target,
			Amount:      amount,
			Description: req.Description,
		},
	}
	if err := s.closeout.AppendRun(ctx, tenantID, companyID, closedPeriod, run); err != nil {
		// The entry is posted; a missing audit record is reported, not rolled back.
		logger.Error("Failed to append adjustment run record", slog.String("period", closedPeriod.String()), slog.String("entry_id", entry.EntryID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("adjustment posted as entry %s but run record append failed: %w", entry.EntryID, err)
	}

	logger.Info("Prior-period adjustment posted",
		slog.String("source_period", closedPeriod.String()),
		slog.String("posted_into", target.String()),
		slog.String("entry_id", entry.EntryID))

	return &dto.PriorPeriodAdjustmentResponse{
		EntryID:      entry.EntryID,
		SourcePeriod: closedPeriod.String(),
		PostedInto:   target.String(),
		Amount:       amount,
	}, nil
}

func (s *periodService) findOpenPeriodAfter(ctx context.Context, tenantID, companyID string, from domain.Period) (domain.Period, error) {
	candidate := from
	for i := 0; i < maxAdjustmentWalk; i++ {
		candidate = candidate.Next()
		state, err := s.closeout.GetPeriodState(ctx, tenantID, companyID, candidate)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return candidate, nil
			}
			return "", fmt.Errorf("failed to read period state for %s: %w", candidate, err)
		}
		if state.Status == domain.PeriodOpen {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no open period within %d months after %s", apperrors.ErrConflict, maxAdjustmentWalk, from)
}
