package services

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/dto"
)

// CompanySvcFacade manages companies and serves the existence check every
// scoped operation performs.
type CompanySvcFacade interface {
	// CreateCompany persists a new company under a tenant.
	CreateCompany(ctx context.Context, tenantID string, req dto.CreateCompanyRequest, actor string) (*domain.Company, error)

	// GetCompanyByID retrieves a company; ErrNotFound doubles as the
	// company-existence check.
	GetCompanyByID(ctx context.Context, tenantID, companyID string) (*domain.Company, error)

	// ListCompanies retrieves all companies of a tenant.
	ListCompanies(ctx context.Context, tenantID string) ([]domain.Company, error)
}
