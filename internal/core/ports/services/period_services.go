package services

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/dto"
)

// PeriodSvcFacade is the period registry: lock-state machine plus the
// prior-period adjustment redirection path.
type PeriodSvcFacade interface {
	// GetStatus returns the lock state of a period, defaulting to open for
	// periods with no stored record.
	GetStatus(ctx context.Context, tenantID, companyID string, period domain.Period) (domain.PeriodState, error)

	// Lock soft-freezes a period.
	Lock(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error)

	// Unlock reopens a locked or closed period, an explicit administrative override.
	Unlock(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error)

	// CompleteClose marks a period closed.
	CompleteClose(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (domain.PeriodState, error)

	// PostPriorPeriodAdjustment posts an adjustment attributed to a closed
	// period into the next open period, recording the redirection in the
	// closed period's run ledger.
	PostPriorPeriodAdjustment(ctx context.Context, tenantID, companyID string, closedPeriod domain.Period, req dto.PriorPeriodAdjustmentRequest, actor string) (*dto.PriorPeriodAdjustmentResponse, error)
}
