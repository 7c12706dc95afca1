package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecognitionMethod determines how a schedule's amount is spread over its span.
type RecognitionMethod string

const (
	StraightLine RecognitionMethod = "straight_line"
	DailyProrata RecognitionMethod = "daily_prorata"
	CustomMethod RecognitionMethod = "custom"
)

// RecognitionSchedule spreads a deferred amount over [StartDate, EndDate].
// Immutable once created except for deletion.
type RecognitionSchedule struct {
	ScheduleID   string            `json:"scheduleID"`
	TenantID     string            `json:"tenantID"`
	CompanyID    string            `json:"companyID"`
	StartDate    time.Time         `json:"startDate"`
	EndDate      time.Time         `json:"endDate"`
	Amount       decimal.Decimal   `json:"amount"`
	Method       RecognitionMethod `json:"method"`
	CurrencyCode string            `json:"currencyCode"`
	Description  string            `json:"description"`
	AuditFields
}

// RecognizedPortion is the slice of one schedule attributable to a requested
// period, computed by the recognition engine.
type RecognizedPortion struct {
	ScheduleID  string          `json:"scheduleID"`
	Amount      decimal.Decimal `json:"amount"`
	RecognizeOn time.Time       `json:"recognizeOn"` // End of the schedule/period overlap
	Warning     string          `json:"warning,omitempty"`
}
