package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/closepilot/ledgercore/internal/utils/accounting"
)

// revenueService prorates deferred revenue schedules into periods.
type revenueService struct {
	scheduleRepo portsrepo.ScheduleRepositoryFacade
	journalSvc   portssvc.JournalSvcFacade
	directory    portssvc.AccountDirectorySvcFacade
	companySvc   portssvc.CompanySvcFacade
	closeout     portsrepo.CloseoutStore
}

// NewRevenueService creates a new revenue recognition service.
func NewRevenueService(
	scheduleRepo portsrepo.ScheduleRepositoryFacade,
	journalSvc portssvc.JournalSvcFacade,
	directory portssvc.AccountDirectorySvcFacade,
	companySvc portssvc.CompanySvcFacade,
	closeout portsrepo.CloseoutStore,
) portssvc.RevenueSvcFacade {
	return &revenueService{
		scheduleRepo: scheduleRepo,
		journalSvc:   journalSvc,
		directory:    directory,
		companySvc:   companySvc,
		closeout:     closeout,
	}
}

var _ portssvc.RevenueSvcFacade = (*revenueService)(nil)

// CreateSchedule persists a recognition schedule. Schedules are immutable
// once created; mistakes are fixed by delete-and-recreate.
func (s *revenueService) CreateSchedule(ctx context.Context, tenantID, companyID string, req dto.CreateScheduleRequest, actor string) (*domain.RecognitionSchedule, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	company, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: schedule end date precedes start date", apperrors.ErrValidation)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: schedule amount must be positive", apperrors.ErrValidation)
	}
	// Recognition entries post in the company base currency, so schedules in
	// any other currency are rejected up front rather than mis-posted later.
	currency := strings.ToUpper(req.CurrencyCode)
	if currency == "" {
		currency = company.BaseCurrencyCode
	}
	if currency != company.BaseCurrencyCode {
		return nil, fmt.Errorf("%w: schedule currency %s does not match company base currency %s", apperrors.ErrValidation, currency, company.BaseCurrencyCode)
	}

	now := time.Now().UTC()
	schedule := domain.RecognitionSchedule{
		ScheduleID:   uuid.NewString(),
		TenantID:     tenantID,
		CompanyID:    companyID,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Amount:       req.Amount,
		Method:       domain.RecognitionMethod(req.Method),
		CurrencyCode: currency,
		Description:  req.Description,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.scheduleRepo.SaveSchedule(ctx, schedule); err != nil {
		logger.Error("Failed to save schedule", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	logger.Info("Recognition schedule created", slog.String("schedule_id", schedule.ScheduleID), slog.String("amount", schedule.Amount.String()))
	return &schedule, nil
}

// ListSchedules retrieves all schedules of a company.
func (s *revenueService) ListSchedules(ctx context.Context, tenantID, companyID string) ([]domain.RecognitionSchedule, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}
	schedules, err := s.scheduleRepo.ListSchedules(ctx, tenantID, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

// DeleteSchedule removes a schedule after verifying ownership.
func (s *revenueService) DeleteSchedule(ctx context.Context, tenantID, companyID, scheduleID string) error {
	schedule, err := s.scheduleRepo.FindScheduleByID(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to find schedule %s: %w", scheduleID, err)
	}
	if schedule.TenantID != tenantID || schedule.CompanyID != companyID {
		return apperrors.ErrNotFound
	}
	if err := s.scheduleRepo.DeleteSchedule(ctx, scheduleID); err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", scheduleID, err)
	}
	return nil
}

// RunRecognition computes each overlapping schedule's prorated portion for a
// period: amount * overlapDays / scheduleDays, rounded to 2 decimals. The
// custom method has no curve definition yet and falls back to straight-line
// with a per-schedule warning in the summary.
func (s *revenueService) RunRecognition(ctx context.Context, tenantID, companyID string, period domain.Period) (*dto.RecognitionRunResult, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	periodStart := period.Start()
	periodEnd := period.End()

	schedules, err := s.scheduleRepo.ListSchedulesOverlapping(ctx, tenantID, companyID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}

	result := dto.RecognitionRunResult{Period: period.String(), Total: decimal.Zero}
	for _, sched := range schedules {
		overlap := accounting.OverlapDays(sched.StartDate, sched.EndDate, periodStart, periodEnd)
		if overlap <= 0 {
			continue
		}
		scheduleDays := accounting.DaysInclusive(sched.StartDate, sched.EndDate)
		amount := accounting.Prorate(sched.Amount, overlap, scheduleDays)

		portion := domain.RecognizedPortion{
			ScheduleID:  sched.ScheduleID,
			Amount:      amount,
			RecognizeOn: overlapEnd(sched.EndDate, periodEnd),
		}
		if sched.Method == domain.CustomMethod {
			portion.Warning = fmt.Sprintf("schedule %s uses custom method, recognized straight-line", sched.ScheduleID)
			result.Warnings = append(result.Warnings, portion.Warning)
		}
		result.Portions = append(result.Portions, portion)
		result.Total = result.Total.Add(amount)
	}

	return &result, nil
}

func overlapEnd(scheduleEnd, periodEnd time.Time) time.Time {
	if scheduleEnd.Before(periodEnd) {
		return scheduleEnd
	}
	return periodEnd
}

// PostRecognitionJournal posts the period's total recognized revenue as one
// entry, debit deferred revenue / credit revenue. Totals of zero or less
// produce no entry but still leave a run record.
func (s *revenueService) PostRecognitionJournal(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	result, err := s.RunRecognition(ctx, tenantID, companyID, period)
	if err != nil {
		return nil, err
	}

	var entry *domain.JournalEntry
	if result.Total.GreaterThan(decimal.Zero) {
		deferred, err := s.directory.Resolve(ctx, tenantID, companyID, domain.RoleDeferredRevenue, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve deferredRevenue account: %w", err)
		}
		revenue, err := s.directory.Resolve(ctx, tenantID, companyID, domain.RoleRevenue, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve revenue account: %w", err)
		}

		entry, err = s.journalSvc.PostEntry(ctx, tenantID, companyID, dto.PostEntryRequest{
			Date:      period.End(),
			Memo:      "Revenue recognition " + period.String(),
			Reference: "REVREC-" + period.String(),
			EntryType: "revenue_recognition",
			Lines: []dto.EntryLineRequest{
				{AccountID: deferred.AccountID, Debit: result.Total, Memo: "Deferred revenue released"},
				{AccountID: revenue.AccountID, Credit: result.Total, Memo: "Revenue recognized"},
			},
		}, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to post recognition entry: %w", err)
		}
	} else {
		logger.Info("No revenue to recognize, skipping entry", slog.String("period", period.String()))
	}

	run := domain.RunRecord{
		RunID: uuid.NewString(),
		Type:  domain.RunRevenueRecognition,
		At:    time.Now().UTC(),
		Actor: actor,
		Detail: domain.RunDetail{
			Posted:   len(result.Portions),
			Amount:   result.Total,
			Warnings: result.Warnings,
		},
	}
	if entry != nil {
		run.Detail.EntryID = entry.EntryID
	}
	if err := s.closeout.AppendRun(ctx, tenantID, companyID, period, run); err != nil {
		logger.Error("Failed to append recognition run record", slog.String("period", period.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("recognition completed but run record append failed: %w", err)
	}

	logger.Info("Revenue recognition run finished",
		slog.String("period", period.String()),
		slog.String("total", result.Total.String()),
		slog.Int("schedules", len(result.Portions)))
	return entry, nil
}
