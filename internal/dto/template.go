package dto

import (
	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TemplateLineRequest is one recipe leg of a recurring template.
type TemplateLineRequest struct {
	Role   string          `json:"role" binding:"required"`
	Debit  decimal.Decimal `json:"debit"`
	Credit decimal.Decimal `json:"credit"`
	Memo   string          `json:"memo"`
}

// CreateTemplateRequest creates a recurring journal template.
type CreateTemplateRequest struct {
	Name  string                `json:"name" binding:"required"`
	Memo  string                `json:"memo"`
	Lines []TemplateLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// TemplateResponse is the API shape of a recurring template.
type TemplateResponse struct {
	TemplateID string                `json:"templateID"`
	CompanyID  string                `json:"companyID"`
	Name       string                `json:"name"`
	Memo       string                `json:"memo"`
	IsActive   bool                  `json:"isActive"`
	Lines      []TemplateLineRequest `json:"lines"`
}

// ToTemplateResponse converts a domain template to its API shape.
func ToTemplateResponse(t *domain.RecurringTemplate) TemplateResponse {
	lines := make([]TemplateLineRequest, len(t.Lines))
	for i, l := range t.Lines {
		lines[i] = TemplateLineRequest{Role: string(l.Role), Debit: l.Debit, Credit: l.Credit, Memo: l.Memo}
	}
	return TemplateResponse{
		TemplateID: t.TemplateID,
		CompanyID:  t.CompanyID,
		Name:       t.Name,
		Memo:       t.Memo,
		IsActive:   t.IsActive,
		Lines:      lines,
	}
}
