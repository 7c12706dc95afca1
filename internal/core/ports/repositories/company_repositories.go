package repositories

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a company scoped to its tenant.
	// Returns apperrors.ErrNotFound when absent, which is how the existence
	// check every scoped operation relies on is implemented.
	FindCompanyByID(ctx context.Context, tenantID, companyID string) (*domain.Company, error)

	// ListCompanies retrieves all companies of a tenant.
	ListCompanies(ctx context.Context, tenantID string) ([]domain.Company, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error
}

// CompanyRepositoryFacade combines company repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
}
