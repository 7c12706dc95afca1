package models

import "github.com/shopspring/decimal"

// RecurringTemplate is the recurring_templates table row.
type RecurringTemplate struct {
	TemplateID string `db:"template_id"`
	TenantID   string `db:"tenant_id"`
	CompanyID  string `db:"company_id"`
	Name       string `db:"name"`
	Memo       string `db:"memo"`
	IsActive   bool   `db:"is_active"`
	AuditFields
}

// RecurringTemplateLine is the recurring_template_lines table row. Lines
// address accounts by role, not id, so the recipe survives chart changes.
type RecurringTemplateLine struct {
	TemplateLineID string          `db:"template_line_id"`
	TemplateID     string          `db:"template_id"`
	Role           string          `db:"role"`
	Debit          decimal.Decimal `db:"debit"`
	Credit         decimal.Decimal `db:"credit"`
	Memo           string          `db:"memo"`
	Position       int             `db:"position"`
}
