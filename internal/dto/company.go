package dto

import "github.com/closepilot/ledgercore/internal/core/domain"

// CreateCompanyRequest creates a bookkeeping company under a tenant.
type CreateCompanyRequest struct {
	Name             string `json:"name" binding:"required"`
	BaseCurrencyCode string `json:"baseCurrencyCode" binding:"required,len=3"`
}

// CompanyResponse is the API shape of a company.
type CompanyResponse struct {
	CompanyID        string `json:"companyID"`
	TenantID         string `json:"tenantID"`
	Name             string `json:"name"`
	BaseCurrencyCode string `json:"baseCurrencyCode"`
	IsActive         bool   `json:"isActive"`
}

// ToCompanyResponse converts a domain company to its API shape.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:        c.CompanyID,
		TenantID:         c.TenantID,
		Name:             c.Name,
		BaseCurrencyCode: c.BaseCurrencyCode,
		IsActive:         c.IsActive,
	}
}
