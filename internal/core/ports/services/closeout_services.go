package services

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/dto"
)

// RecurringSvcFacade runs template-driven recurring postings.
type RecurringSvcFacade interface {
	// CreateTemplate persists a recurring template.
	CreateTemplate(ctx context.Context, tenantID, companyID string, req dto.CreateTemplateRequest, actor string) (*domain.RecurringTemplate, error)

	// ListTemplates retrieves all templates of a company.
	ListTemplates(ctx context.Context, tenantID, companyID string) ([]domain.RecurringTemplate, error)

	// RunRecurringJournals posts one entry per active template for a period.
	// Individual template failures are counted, not propagated.
	RunRecurringJournals(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (*dto.RecurringRunResult, error)
}

// FxRevaluationSvcFacade is the two-phase FX revaluation engine.
type FxRevaluationSvcFacade interface {
	// PreviewRevaluation computes the revaluation set without posting.
	PreviewRevaluation(ctx context.Context, tenantID, companyID string, period domain.Period) (*dto.RevaluationPreviewResponse, error)

	// PostRevaluation posts the revaluation entry for a period and stores the
	// history snapshot, overwriting any previous snapshot for that period.
	PostRevaluation(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (*dto.PostRevaluationResponse, error)

	// GetRevaluationHistory retrieves the stored snapshot for a period.
	GetRevaluationHistory(ctx context.Context, tenantID, companyID string, period domain.Period) (*domain.RevaluationSnapshot, error)
}

// RevenueSvcFacade is the prorated revenue recognition engine.
type RevenueSvcFacade interface {
	// CreateSchedule persists a recognition schedule.
	CreateSchedule(ctx context.Context, tenantID, companyID string, req dto.CreateScheduleRequest, actor string) (*domain.RecognitionSchedule, error)

	// ListSchedules retrieves all schedules of a company.
	ListSchedules(ctx context.Context, tenantID, companyID string) ([]domain.RecognitionSchedule, error)

	// DeleteSchedule removes a schedule.
	DeleteSchedule(ctx context.Context, tenantID, companyID, scheduleID string) error

	// RunRecognition computes the prorated portions for a period without posting.
	RunRecognition(ctx context.Context, tenantID, companyID string, period domain.Period) (*dto.RecognitionRunResult, error)

	// PostRecognitionJournal posts one entry for the period's total
	// recognized revenue; totals of zero or less produce no entry.
	PostRecognitionJournal(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (*domain.JournalEntry, error)
}

// RunLedgerSvcFacade lists and compensates batch runs.
type RunLedgerSvcFacade interface {
	// ListRuns retrieves the run records of a period, optionally filtered by type.
	ListRuns(ctx context.Context, tenantID, companyID string, period domain.Period, runType *domain.RunType) ([]domain.RunRecord, error)

	// RollbackRun appends a compensating rollback record referencing runID.
	// It does not reverse the postings the run produced.
	RollbackRun(ctx context.Context, tenantID, companyID string, period domain.Period, runID, actor string) (*domain.RunRecord, error)
}

// ConsistencySvcFacade is the read-only ledger auditor.
type ConsistencySvcFacade interface {
	// CheckAccountTypes verifies every account carries a known type.
	CheckAccountTypes(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error)

	// CheckEntryBalances verifies the double-entry invariant over posted entries.
	CheckEntryBalances(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error)

	// CheckOrphanLines detects lines whose parent entry or account is missing.
	CheckOrphanLines(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error)

	// CheckReversalLinks verifies reversed entries and their reversals point at each other.
	CheckReversalLinks(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error)

	// RunAll executes every check and aggregates the totals.
	RunAll(ctx context.Context, tenantID, companyID string) (*domain.ValidationReport, error)
}
