package mapping

import (
	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/models"
)

// ToModelTemplate converts a domain RecurringTemplate to its table row.
// Recipe lines map separately because they live in their own table.
func ToModelTemplate(d domain.RecurringTemplate) models.RecurringTemplate {
	return models.RecurringTemplate{
		TemplateID:  d.TemplateID,
		TenantID:    d.TenantID,
		CompanyID:   d.CompanyID,
		Name:        d.Name,
		Memo:        d.Memo,
		IsActive:    d.IsActive,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTemplate converts a model RecurringTemplate and its lines to domain.
func ToDomainTemplate(m models.RecurringTemplate, lines []models.RecurringTemplateLine) domain.RecurringTemplate {
	t := domain.RecurringTemplate{
		TemplateID:  m.TemplateID,
		TenantID:    m.TenantID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		Memo:        m.Memo,
		IsActive:    m.IsActive,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	t.Lines = make([]domain.TemplateLine, len(lines))
	for i, l := range lines {
		t.Lines[i] = domain.TemplateLine{
			Role:   domain.AccountRole(l.Role),
			Debit:  l.Debit,
			Credit: l.Credit,
			Memo:   l.Memo,
		}
	}
	return t
}
