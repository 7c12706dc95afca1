package repositories

import (
	"context"
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
)

// TemplateReader defines read operations for recurring journal templates
type TemplateReader interface {
	// FindTemplateByID retrieves a specific template.
	FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error)

	// ListActiveTemplates retrieves all active templates for a company.
	ListActiveTemplates(ctx context.Context, tenantID, companyID string) ([]domain.RecurringTemplate, error)

	// ListTemplates retrieves all templates for a company, active or not.
	ListTemplates(ctx context.Context, tenantID, companyID string) ([]domain.RecurringTemplate, error)
}

// TemplateWriter defines write operations for recurring journal templates
type TemplateWriter interface {
	// SaveTemplate persists a template with its recipe lines.
	SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error

	// SetTemplateActive toggles a template's active flag.
	SetTemplateActive(ctx context.Context, templateID string, active bool, userID string, now time.Time) error
}

// TemplateRepositoryFacade combines template repository interfaces
type TemplateRepositoryFacade interface {
	TemplateReader
	TemplateWriter
}
