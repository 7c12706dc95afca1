package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecognitionSchedule is the recognition_schedules table row.
type RecognitionSchedule struct {
	ScheduleID   string          `db:"schedule_id"`
	TenantID     string          `db:"tenant_id"`
	CompanyID    string          `db:"company_id"`
	StartDate    time.Time       `db:"start_date"`
	EndDate      time.Time       `db:"end_date"`
	Amount       decimal.Decimal `db:"amount"`
	Method       string          `db:"method"`
	CurrencyCode string          `db:"currency_code"`
	Description  string          `db:"description"`
	AuditFields
}
