package models

import (
	"github.com/shopspring/decimal"
)

// Account is the accounts table row.
type Account struct {
	AccountID    string          `db:"account_id"`
	TenantID     string          `db:"tenant_id"`
	CompanyID    string          `db:"company_id"`
	Code         string          `db:"code"` // Unique per (tenant_id, company_id)
	Name         string          `db:"name"`
	AccountType  string          `db:"account_type"`
	CurrencyCode string          `db:"currency_code"`
	IsActive     bool            `db:"is_active"`
	Balance      decimal.Decimal `db:"balance"` // Persisted account balance
	AuditFields
}
