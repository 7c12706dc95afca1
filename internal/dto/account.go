package dto

import (
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ResolveAccountRequest asks the directory for the account serving a role.
type ResolveAccountRequest struct {
	Role string `json:"role" binding:"required"`
}

// AccountResponse is the API shape of an account.
type AccountResponse struct {
	AccountID    string          `json:"accountID"`
	CompanyID    string          `json:"companyID"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	AccountType  string          `json:"accountType"`
	CurrencyCode string          `json:"currencyCode"`
	IsActive     bool            `json:"isActive"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// ToAccountResponse converts a domain account to its API shape.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:    a.AccountID,
		CompanyID:    a.CompanyID,
		Code:         a.Code,
		Name:         a.Name,
		AccountType:  string(a.AccountType),
		CurrencyCode: a.CurrencyCode,
		IsActive:     a.IsActive,
		Balance:      a.Balance,
		CreatedAt:    a.CreatedAt,
	}
}
