package domain

import "github.com/shopspring/decimal"

// RecurringTemplate drives one programmatic posting per period while active.
type RecurringTemplate struct {
	TemplateID string         `json:"templateID"`
	TenantID   string         `json:"tenantID"`
	CompanyID  string         `json:"companyID"`
	Name       string         `json:"name"`
	Memo       string         `json:"memo"`
	IsActive   bool           `json:"isActive"`
	Lines      []TemplateLine `json:"lines"`
	AuditFields
}

// TemplateLine is one leg of a template's recipe. Accounts are addressed by
// role so the recipe survives chart-of-accounts changes.
type TemplateLine struct {
	Role   AccountRole     `json:"role"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
	Memo   string          `json:"memo"`
}

// IsZero reports whether the template would produce a zero-amount posting.
func (t *RecurringTemplate) IsZero() bool {
	for _, l := range t.Lines {
		if !l.Debit.IsZero() || !l.Credit.IsZero() {
			return false
		}
	}
	return true
}
