package services

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
)

// AccountResolverSvc resolves semantic roles to concrete accounts.
type AccountResolverSvc interface {
	// Resolve returns the account serving a role for a company, creating it
	// with the role's canonical code/name/type when missing. Resolution is
	// idempotent under concurrency.
	Resolve(ctx context.Context, tenantID, companyID string, role domain.AccountRole, actor string) (*domain.Account, error)
}

// AccountReaderSvc defines read operations for accounts
type AccountReaderSvc interface {
	// GetAccountsByIDs retrieves accounts by ID, keyed by ID.
	GetAccountsByIDs(ctx context.Context, tenantID, companyID string, accountIDs []string) (map[string]domain.Account, error)

	// ListAccounts retrieves all accounts of a company.
	ListAccounts(ctx context.Context, tenantID, companyID string) ([]domain.Account, error)
}

// AccountDirectorySvcFacade combines the account directory interfaces
type AccountDirectorySvcFacade interface {
	AccountResolverSvc
	AccountReaderSvc
}
