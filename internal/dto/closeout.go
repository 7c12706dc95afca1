package dto

import (
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecurringRunResult summarizes one recurring posting run.
type RecurringRunResult struct {
	RunID   string   `json:"runID"`
	Period  string   `json:"period"`
	Posted  int      `json:"posted"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// RevaluationLineResponse is one previewed/posted currency revaluation.
type RevaluationLineResponse struct {
	CurrencyCode   string          `json:"currencyCode"`
	AccountID      string          `json:"accountID"`
	ForeignBalance decimal.Decimal `json:"foreignBalance"`
	Rate           decimal.Decimal `json:"rate"`
	BaseBalance    decimal.Decimal `json:"baseBalance"`
	Revaluation    decimal.Decimal `json:"revaluation"`
}

// RevaluationPreviewResponse is the computed revaluation set for a period.
type RevaluationPreviewResponse struct {
	Period string                    `json:"period"`
	Lines  []RevaluationLineResponse `json:"lines"`
	Errors []string                  `json:"errors,omitempty"`
}

// PostRevaluationResponse reports a posted revaluation.
type PostRevaluationResponse struct {
	EntryID string                    `json:"entryID,omitempty"`
	Period  string                    `json:"period"`
	Lines   []RevaluationLineResponse `json:"lines"`
}

// ToRevaluationLineResponses converts domain revaluation lines.
func ToRevaluationLineResponses(lines []domain.RevaluationLine) []RevaluationLineResponse {
	out := make([]RevaluationLineResponse, len(lines))
	for i, l := range lines {
		out[i] = RevaluationLineResponse{
			CurrencyCode:   l.CurrencyCode,
			AccountID:      l.AccountID,
			ForeignBalance: l.ForeignBalance,
			Rate:           l.Rate,
			BaseBalance:    l.BaseBalance,
			Revaluation:    l.Revaluation,
		}
	}
	return out
}

// CreateScheduleRequest creates a revenue recognition schedule.
type CreateScheduleRequest struct {
	StartDate    time.Time       `json:"startDate" binding:"required"`
	EndDate      time.Time       `json:"endDate" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	Method       string          `json:"method" binding:"required,oneof=straight_line daily_prorata custom"`
	CurrencyCode string          `json:"currencyCode" binding:"required,len=3"`
	Description  string          `json:"description"`
}

// RecognitionRunResult is the computed recognition for a period.
type RecognitionRunResult struct {
	Period   string                     `json:"period"`
	Portions []domain.RecognizedPortion `json:"portions"`
	Total    decimal.Decimal            `json:"total"`
	Warnings []string                   `json:"warnings,omitempty"`
}

// RunRecordResponse is the API shape of one run ledger record.
type RunRecordResponse struct {
	RunID  string           `json:"runID"`
	Type   string           `json:"type"`
	At     time.Time        `json:"at"`
	Actor  string           `json:"actor"`
	Detail domain.RunDetail `json:"detail"`
}

// ToRunRecordResponses converts run records to their API shape.
func ToRunRecordResponses(runs []domain.RunRecord) []RunRecordResponse {
	out := make([]RunRecordResponse, len(runs))
	for i, r := range runs {
		out[i] = RunRecordResponse{RunID: r.RunID, Type: string(r.Type), At: r.At, Actor: r.Actor, Detail: r.Detail}
	}
	return out
}

// ScheduleResponse is the API shape of a recognition schedule.
type ScheduleResponse struct {
	ScheduleID   string          `json:"scheduleID"`
	CompanyID    string          `json:"companyID"`
	StartDate    time.Time       `json:"startDate"`
	EndDate      time.Time       `json:"endDate"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	CurrencyCode string          `json:"currencyCode"`
	Description  string          `json:"description"`
}

// ToScheduleResponse converts a domain schedule to its API shape.
func ToScheduleResponse(s *domain.RecognitionSchedule) ScheduleResponse {
	return ScheduleResponse{
		ScheduleID:   s.ScheduleID,
		CompanyID:    s.CompanyID,
		StartDate:    s.StartDate,
		EndDate:      s.EndDate,
		Amount:       s.Amount,
		Method:       string(s.Method),
		CurrencyCode: s.CurrencyCode,
		Description:  s.Description,
	}
}
