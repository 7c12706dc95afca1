package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevaluationLine is the point-in-time computation for one foreign currency:
// Revaluation = BaseBalance - ForeignBalance. A positive value is an FX loss,
// a negative one an FX gain, by the engine's sign convention.
type RevaluationLine struct {
	CurrencyCode   string          `json:"currencyCode"`
	AccountID      string          `json:"accountID"`
	ForeignBalance decimal.Decimal `json:"foreignBalance"`
	Rate           decimal.Decimal `json:"rate"`
	BaseBalance    decimal.Decimal `json:"baseBalance"`
	Revaluation    decimal.Decimal `json:"revaluation"`
}

// RevaluationSnapshot is the persisted history record for one (company,
// period) revaluation run. Re-posting the same period overwrites it.
type RevaluationSnapshot struct {
	TenantID  string            `json:"tenantID"`
	CompanyID string            `json:"companyID"`
	Period    Period            `json:"period"`
	Lines     []RevaluationLine `json:"lines"`
	EntryID   string            `json:"entryID"`
	PostedAt  time.Time         `json:"postedAt"`
	PostedBy  string            `json:"postedBy"`
}
