package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/middleware"
)

// accountDirectory maps semantic roles to concrete accounts, creating the
// canonical account for a role when none exists.
type accountDirectory struct {
	accountRepo portsrepo.AccountRepositoryFacade
	companySvc  portssvc.CompanySvcFacade
}

// NewAccountDirectory creates a new account directory service.
func NewAccountDirectory(accountRepo portsrepo.AccountRepositoryFacade, companySvc portssvc.CompanySvcFacade) portssvc.AccountDirectorySvcFacade {
	return &accountDirectory{accountRepo: accountRepo, companySvc: companySvc}
}

var _ portssvc.AccountDirectorySvcFacade = (*accountDirectory)(nil)

// Resolve finds the account serving a role for a company. Lookup order:
// canonical code, then fallback names, then fallback codes; if nothing
// matches, the canonical account is created. A concurrent creation surfaces
// as ErrDuplicate from the unique (tenant, company, code) constraint and is
// resolved by re-reading.
func (s *accountDirectory) Resolve(ctx context.Context, tenantID, companyID string, role domain.AccountRole, actor string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	spec, known := role.Spec()
	if !known {
		return nil, fmt.Errorf("%w: unknown account role %q", apperrors.ErrValidation, role)
	}

	company, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	if acc, err := s.lookup(ctx, tenantID, companyID, spec); err != nil {
		return nil, err
	} else if acc != nil {
		return acc, nil
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:    uuid.NewString(),
		TenantID:     tenantID,
		CompanyID:    companyID,
		Code:         spec.Code,
		Name:         spec.Name,
		AccountType:  spec.Type,
		CurrencyCode: company.BaseCurrencyCode,
		IsActive:     true,
		Balance:      decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// Lost the creation race; the winner's account is what we want.
			existing, readErr := s.accountRepo.FindAccountByCode(ctx, tenantID, companyID, spec.Code)
			if readErr != nil {
				return nil, fmt.Errorf("failed to re-read account %s after duplicate: %w", spec.Code, readErr)
			}
			return existing, nil
		}
		logger.Error("Failed to create role account", slog.String("role", string(role)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create account for role %s: %w", role, err)
	}

	logger.Info("Role account created", slog.String("role", string(role)), slog.String("code", spec.Code), slog.String("company_id", companyID))
	return &account, nil
}

func (s *accountDirectory) lookup(ctx context.Context, tenantID, companyID string, spec domain.RoleSpec) (*domain.Account, error) {
	acc, err := s.accountRepo.FindAccountByCode(ctx, tenantID, companyID, spec.Code)
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account by code %s: %w", spec.Code, err)
	}

	for _, name := range spec.FallbackNames {
		acc, err := s.accountRepo.FindAccountByName(ctx, tenantID, companyID, name)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up account by name %q: %w", name, err)
		}
	}

	for _, code := range spec.FallbackCodes {
		acc, err := s.accountRepo.FindAccountByCode(ctx, tenantID, companyID, code)
		if err == nil {
			return acc, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up account by code %s: %w", code, err)
		}
	}

	return nil, nil
}

// GetAccountsByIDs retrieves accounts by ID, verifying each belongs to the
// requested tenant and company.
func (s *accountDirectory) GetAccountsByIDs(ctx context.Context, tenantID, companyID string, accountIDs []string) (map[string]domain.Account, error) {
	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve accounts: %w", err)
	}
	for id, acc := range accounts {
		if acc.TenantID != tenantID || acc.CompanyID != companyID {
			delete(accounts, id)
		}
	}
	return accounts, nil
}

// ListAccounts retrieves all accounts of a company.
func (s *accountDirectory) ListAccounts(ctx context.Context, tenantID, companyID string) ([]domain.Account, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}
