package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
)

// ErrCompanyNotFound distinguishes a missing company from other not-found
// conditions while still matching errors.Is(err, apperrors.ErrNotFound).
var ErrCompanyNotFound = fmt.Errorf("company not found: %w", apperrors.ErrNotFound)

type companyService struct {
	companyRepo  portsrepo.CompanyRepositoryFacade
	currencyRepo portsrepo.CurrencyRepository
}

// NewCompanyService creates a new company service.
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade, currencyRepo portsrepo.CurrencyRepository) portssvc.CompanySvcFacade {
	return &companyService{companyRepo: companyRepo, currencyRepo: currencyRepo}
}

var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany persists a new company under a tenant.
func (s *companyService) CreateCompany(ctx context.Context, tenantID string, req dto.CreateCompanyRequest, actor string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currencyCode := strings.ToUpper(req.BaseCurrencyCode)
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, currencyCode); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown base currency %s", apperrors.ErrValidation, currencyCode)
		}
		return nil, fmt.Errorf("failed to validate base currency: %w", err)
	}

	now := time.Now().UTC()
	company := domain.Company{
		CompanyID:        uuid.NewString(),
		TenantID:         tenantID,
		Name:             req.Name,
		BaseCurrencyCode: currencyCode,
		IsActive:         true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company", slog.String("error", err.Error()), slog.String("tenant_id", tenantID))
		return nil, fmt.Errorf("failed to save company: %w", err)
	}

	logger.Info("Company created", slog.String("company_id", company.CompanyID), slog.String("tenant_id", tenantID))
	return &company, nil
}

// GetCompanyByID retrieves a company scoped to its tenant.
func (s *companyService) GetCompanyByID(ctx context.Context, tenantID, companyID string) (*domain.Company, error) {
	company, err := s.companyRepo.FindCompanyByID(ctx, tenantID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCompanyNotFound, companyID)
		}
		return nil, fmt.Errorf("failed to find company %s: %w", companyID, err)
	}
	return company, nil
}

// ListCompanies retrieves all companies of a tenant.
func (s *companyService) ListCompanies(ctx context.Context, tenantID string) ([]domain.Company, error) {
	companies, err := s.companyRepo.ListCompanies(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}
