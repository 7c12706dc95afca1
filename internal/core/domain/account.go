package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// AccountRole is a semantic name that business events use to address an
// account without knowing its concrete code. The directory resolves a role to
// a concrete Account per company, creating it on first use.
type AccountRole string

const (
	RoleCash               AccountRole = "cash"
	RoleAccountsReceivable AccountRole = "accountsReceivable"
	RoleRevenue            AccountRole = "revenue"
	RoleCOGS               AccountRole = "cogs"
	RoleInventory          AccountRole = "inventory"
	RoleTaxPayable         AccountRole = "taxPayable"
	RoleSalesDiscounts     AccountRole = "salesDiscounts"
	RoleFxGain             AccountRole = "fxGain"
	RoleFxLoss             AccountRole = "fxLoss"
	RoleForeignBalance     AccountRole = "foreignBalance"
	RoleDeferredRevenue    AccountRole = "deferredRevenue"
)

// RoleSpec describes how a role maps onto the chart of accounts: the
// canonical code/name/type used on creation, and the lookup fallbacks tried
// before creating anything.
type RoleSpec struct {
	Code          string
	Name          string
	Type          AccountType
	FallbackNames []string
	FallbackCodes []string
}

var roleCatalog = map[AccountRole]RoleSpec{
	RoleCash:               {Code: "1000", Name: "Cash", Type: Asset, FallbackNames: []string{"Cash on Hand", "Petty Cash"}, FallbackCodes: []string{"1001", "1010"}},
	RoleAccountsReceivable: {Code: "1100", Name: "Accounts Receivable", Type: Asset, FallbackNames: []string{"Trade Receivables", "Debtors"}, FallbackCodes: []string{"1110"}},
	RoleInventory:          {Code: "1200", Name: "Inventory", Type: Asset, FallbackNames: []string{"Stock", "Merchandise Inventory"}, FallbackCodes: []string{"1210"}},
	RoleForeignBalance:     {Code: "1300", Name: "Foreign Currency Balance", Type: Asset, FallbackNames: []string{"Foreign Cash", "FX Balance"}, FallbackCodes: []string{"1310"}},
	RoleTaxPayable:         {Code: "2100", Name: "Tax Payable", Type: Liability, FallbackNames: []string{"Sales Tax Payable", "VAT Payable"}, FallbackCodes: []string{"2110"}},
	RoleDeferredRevenue:    {Code: "2300", Name: "Deferred Revenue", Type: Liability, FallbackNames: []string{"Unearned Revenue", "Contract Liability"}, FallbackCodes: []string{"2310"}},
	RoleRevenue:            {Code: "4000", Name: "Revenue", Type: Revenue, FallbackNames: []string{"Sales", "Sales Revenue"}, FallbackCodes: []string{"4010"}},
	RoleSalesDiscounts:     {Code: "4100", Name: "Sales Discounts", Type: Revenue, FallbackNames: []string{"Discounts Given"}, FallbackCodes: []string{"4110"}},
	RoleCOGS:               {Code: "5000", Name: "Cost of Goods Sold", Type: Expense, FallbackNames: []string{"COGS", "Cost of Sales"}, FallbackCodes: []string{"5010"}},
	RoleFxGain:             {Code: "7100", Name: "FX Gain", Type: Revenue, FallbackNames: []string{"Foreign Exchange Gain", "Exchange Gain"}, FallbackCodes: []string{"7110"}},
	RoleFxLoss:             {Code: "7200", Name: "FX Loss", Type: Expense, FallbackNames: []string{"Foreign Exchange Loss", "Exchange Loss"}, FallbackCodes: []string{"7210"}},
}

// Spec returns the chart-of-accounts spec for a role, and whether the role is
// part of the known vocabulary.
func (r AccountRole) Spec() (RoleSpec, bool) {
	spec, ok := roleCatalog[r]
	return spec, ok
}

// Account represents a ledger account. Accounts are tenant scoped and
// effectively permanent; they are never deleted while referenced by a posted
// line, only deactivated.
type Account struct {
	AccountID    string          `json:"accountID"`
	TenantID     string          `json:"tenantID"`
	CompanyID    string          `json:"companyID"`
	Code         string          `json:"code"` // Unique per (tenant, company)
	Name         string          `json:"name"`
	AccountType  AccountType     `json:"accountType"`
	CurrencyCode string          `json:"currencyCode"`
	IsActive     bool            `json:"isActive"`
	Balance      decimal.Decimal `json:"balance"` // Persisted, maintained with each posted entry
	AuditFields
}
