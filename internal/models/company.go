package models

// Company is the companies table row.
type Company struct {
	CompanyID        string `db:"company_id"`
	TenantID         string `db:"tenant_id"`
	Name             string `db:"name"`
	BaseCurrencyCode string `db:"base_currency_code"`
	IsActive         bool   `db:"is_active"`
	AuditFields
}
