package domain

// Company is the bookkeeping unit all ledger state hangs off. Companies are
// tenant scoped; the pair (TenantID, CompanyID) scopes every operation.
type Company struct {
	CompanyID        string `json:"companyID"`
	TenantID         string `json:"tenantID"`
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"`
	IsActive         bool   `json:"isActive"`
	AuditFields
}
