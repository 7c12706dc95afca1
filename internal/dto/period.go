package dto

import (
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PeriodStateResponse is the API shape of a period's lock state.
type PeriodStateResponse struct {
	Period    string    `json:"period"`
	Status    string    `json:"status"`
	Actor     string    `json:"actor,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ToPeriodStateResponse converts a period state to its API shape.
func ToPeriodStateResponse(period domain.Period, s domain.PeriodState) PeriodStateResponse {
	return PeriodStateResponse{
		Period:    period.String(),
		Status:    string(s.Status),
		Actor:     s.Actor,
		UpdatedAt: s.UpdatedAt,
	}
}

// AdjustmentLineRequest is one leg of a prior-period adjustment.
type AdjustmentLineRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo"`
}

// PriorPeriodAdjustmentRequest posts an adjustment discovered after a period
// closed. The engine redirects it into the next open period.
type PriorPeriodAdjustmentRequest struct {
	Description string                  `json:"description" binding:"required"`
	Lines       []AdjustmentLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// PriorPeriodAdjustmentResponse reports where the adjustment actually landed.
type PriorPeriodAdjustmentResponse struct {
	EntryID      string          `json:"entryID"`
	SourcePeriod string          `json:"sourcePeriod"`
	PostedInto   string          `json:"postedInto"`
	Amount       decimal.Decimal `json:"amount"`
}
