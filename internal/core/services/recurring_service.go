package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
)

const defaultItemTimeout = 10 * time.Second

// recurringService posts one journal entry per active template each period.
type recurringService struct {
	templateRepo portsrepo.TemplateRepositoryFacade
	journalSvc   portssvc.JournalSvcFacade
	directory    portssvc.AccountDirectorySvcFacade
	companySvc   portssvc.CompanySvcFacade
	closeout     portsrepo.CloseoutStore
	itemTimeout  time.Duration
}

// NewRecurringService creates a new recurring posting service.
func NewRecurringService(
	templateRepo portsrepo.TemplateRepositoryFacade,
	journalSvc portssvc.JournalSvcFacade,
	directory portssvc.AccountDirectorySvcFacade,
	companySvc portssvc.CompanySvcFacade,
	closeout portsrepo.CloseoutStore,
	itemTimeout time.Duration,
) portssvc.RecurringSvcFacade {
	if itemTimeout <= 0 {
		itemTimeout = defaultItemTimeout
	}
	return &recurringService{
		templateRepo: templateRepo,
		journalSvc:   journalSvc,
		directory:    directory,
		companySvc:   companySvc,
		closeout:     closeout,
		itemTimeout:  itemTimeout,
	}
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

// CreateTemplate persists a recurring template after validating its recipe.
func (s *recurringService) CreateTemplate(ctx context.Context, tenantID, companyID string, req dto.CreateTemplateRequest, actor string) (*domain.RecurringTemplate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	lines := make([]domain.TemplateLine, len(req.Lines))
	for i, l := range req.Lines {
		role := domain.AccountRole(l.Role)
		if _, known := role.Spec(); !known {
			return nil, fmt.Errorf("%w: unknown account role %q in template line", apperrors.ErrValidation, l.Role)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: template amounts must be non-negative", apperrors.ErrValidation)
		}
		lines[i] = domain.TemplateLine{Role: role, Debit: l.Debit, Credit: l.Credit, Memo: l.Memo}
	}

	now := time.Now().UTC()
	template := domain.RecurringTemplate{
		TemplateID: uuid.NewString(),
		TenantID:   tenantID,
		CompanyID:  companyID,
		Name:       req.Name,
		Memo:       req.Memo,
		IsActive:   true,
		Lines:      lines,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.templateRepo.SaveTemplate(ctx, template); err != nil {
		logger.Error("Failed to save template", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save template: %w", err)
	}

	logger.Info("Recurring template created", slog.String("template_id", template.TemplateID), slog.String("name", template.Name))
	return &template, nil
}

// ListTemplates retrieves all templates of a company.
func (s *recurringService) ListTemplates(ctx context.Context, tenantID, companyID string) ([]domain.RecurringTemplate, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}
	templates, err := s.templateRepo.ListTemplates(ctx, tenantID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// RunRecurringJournals posts one entry per active template, dated the last
// day of the period. A single template failing never aborts the batch: the
// failure is logged and counted, and the run record is appended regardless of
// the outcome mix.
func (s *recurringService) RunRecurringJournals(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (*dto.RecurringRunResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	templates, err := s.templateRepo.ListActiveTemplates(ctx, tenantID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active templates: %w", err)
	}

	result := dto.RecurringRunResult{
		RunID:  uuid.NewString(),
		Period: period.String(),
	}
	entryDate := period.End()

	for i := range templates {
		tmpl := &templates[i]
		if tmpl.IsZero() {
			result.Skipped++
			logger.Info("Skipped zero-amount template", slog.String("template_id", tmpl.TemplateID))
			continue
		}

		itemCtx, cancel := context.WithTimeout(ctx, s.itemTimeout)
		err := s.postTemplate(itemCtx, tenantID, companyID, tmpl, entryDate, actor)
		cancel()
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", tmpl.Name, err))
			logger.Error("Template posting failed", slog.String("template_id", tmpl.TemplateID), slog.String("error", err.Error()))
			continue
		}
		result.Posted++
	}

	run := domain.RunRecord{
		RunID: result.RunID,
		Type:  domain.RunRecurring,
		At:    time.Now().UTC(),
		Actor: actor,
		Detail: domain.RunDetail{
			Posted:   result.Posted,
			Skipped:  result.Skipped,
			Failed:   result.Failed,
			Warnings: result.Errors,
		},
	}
	if err := s.closeout.AppendRun(ctx, tenantID, companyID, period, run); err != nil {
		logger.Error("Failed to append recurring run record", slog.String("run_id", result.RunID), slog.String("error", err.Error()))
		return nil, fmt.Errorf("recurring run completed but run record append failed: %w", err)
	}

	logger.Info("Recurring run finished",
		slog.String("period", period.String()),
		slog.Int("posted", result.Posted),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed))
	return &result, nil
}

func (s *recurringService) postTemplate(ctx context.Context, tenantID, companyID string, tmpl *domain.RecurringTemplate, entryDate time.Time, actor string) error {
	lines := make([]dto.EntryLineRequest, 0, len(tmpl.Lines))
	for _, tl := range tmpl.Lines {
		if tl.Debit.IsZero() && tl.Credit.IsZero() {
			continue
		}
		account, err := s.directory.Resolve(ctx, tenantID, companyID, tl.Role, actor)
		if err != nil {
			return fmt.Errorf("failed to resolve role %s: %w", tl.Role, err)
		}
		lines = append(lines, dto.EntryLineRequest{
			AccountID: account.AccountID,
			Debit:     tl.Debit,
			Credit:    tl.Credit,
			Memo:      tl.Memo,
		})
	}
	if len(lines) < 2 {
		return fmt.Errorf("%w: template %s expands to fewer than two lines", apperrors.ErrValidation, tmpl.Name)
	}

	memo := tmpl.Memo
	if memo == "" {
		memo = tmpl.Name
	}

	_, err := s.journalSvc.PostEntry(ctx, tenantID, companyID, dto.PostEntryRequest{
		Date:      entryDate,
		Memo:      memo,
		Reference: "RECUR-" + tmpl.TemplateID,
		EntryType: "recurring",
		Lines:     lines,
	}, actor)
	return err
}
