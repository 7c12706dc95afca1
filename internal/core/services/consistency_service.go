package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/utils/accounting"
)

const (
	checkPageSize = 200
	// snapshotLookback bounds how far back the snapshot check scans; snapshots
	// are keyed by period, so the scan walks months.
	snapshotLookback = 24
)

// consistencyService audits ledger invariants without mutating anything.
// Findings are returned as data; the only errors it propagates are store
// failures.
type consistencyService struct {
	accountRepo portsrepo.AccountReader
	journalRepo portsrepo.JournalRepositoryFacade
	closeout    portsrepo.CloseoutStore
	companySvc  portssvc.CompanySvcFacade
}

// NewConsistencyService creates a new consistency validator.
func NewConsistencyService(
	accountRepo portsrepo.AccountReader,
	journalRepo portsrepo.JournalRepositoryFacade,
	closeout portsrepo.CloseoutStore,
	companySvc portssvc.CompanySvcFacade,
) portssvc.ConsistencySvcFacade {
	return &consistencyService{
		accountRepo: accountRepo,
		journalRepo: journalRepo,
		closeout:    closeout,
		companySvc:  companySvc,
	}
}

var _ portssvc.ConsistencySvcFacade = (*consistencyService)(nil)

var knownAccountTypes = map[domain.AccountType]struct{}{
	domain.Asset:     {},
	domain.Liability: {},
	domain.Equity:    {},
	domain.Revenue:   {},
	domain.Expense:   {},
}

// CheckAccountTypes verifies every account carries a known accounting type.
func (s *consistencyService) CheckAccountTypes(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error) {
	result := newCheckResult("account_types")

	accounts, err := s.accountRepo.ListAccounts(ctx, tenantID, companyID)
	if err != nil {
		return result, fmt.Errorf("failed to list accounts: %w", err)
	}

	for _, acc := range accounts {
		if _, ok := knownAccountTypes[acc.AccountType]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("account %s (%s) has unknown type %q", acc.AccountID, acc.Name, acc.AccountType))
			result.Suggestions = append(result.Suggestions, fmt.Sprintf("assign account %s one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE", acc.AccountID))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// CheckEntryBalances verifies the double-entry invariant over every posted
// entry, reporting the debit/credit delta for each violation.
func (s *consistencyService) CheckEntryBalances(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error) {
	result := newCheckResult("entry_balances")

	err := s.forEachEntryPage(ctx, tenantID, companyID, func(entries []domain.JournalEntry, lines map[string][]domain.JournalLine) {
		for _, e := range entries {
			if e.Status != domain.Posted {
				continue
			}
			entryLines := lines[e.EntryID]
			if len(entryLines) == 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("posted entry %s has no lines", e.EntryID))
				continue
			}
			if err := accounting.CheckBalanced(entryLines); err != nil {
				var unbalanced *apperrors.UnbalancedError
				if errors.As(err, &unbalanced) {
					result.Errors = append(result.Errors, fmt.Sprintf("entry %s is unbalanced by %s (debits %s, credits %s)",
						e.EntryID, unbalanced.Delta().String(), unbalanced.Debits.String(), unbalanced.Credits.String()))
				} else {
					result.Errors = append(result.Errors, fmt.Sprintf("entry %s: %v", e.EntryID, err))
				}
			}
		}
	})
	if err != nil {
		return result, err
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// CheckOrphanLines detects lines whose parent entry or account row is gone.
func (s *consistencyService) CheckOrphanLines(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error) {
	result := newCheckResult("orphan_lines")

	orphans, err := s.journalRepo.FindOrphanLines(ctx, tenantID, companyID)
	if err != nil {
		return result, fmt.Errorf("failed to scan for orphan lines: %w", err)
	}

	for _, l := range orphans {
		result.Errors = append(result.Errors, fmt.Sprintf("line %s references entry %s / account %s but a parent row is missing", l.LineID, l.EntryID, l.AccountID))
	}
	if len(orphans) > 0 {
		result.Suggestions = append(result.Suggestions, "orphaned lines indicate an interrupted migration or manual deletion; restore the parent rows or archive the lines")
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// CheckReversalLinks verifies that every REVERSED entry and its reversal
// point at each other and that the reversal itself is POSTED.
func (s *consistencyService) CheckReversalLinks(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error) {
	result := newCheckResult("reversal_links")

	err := s.forEachEntryPage(ctx, tenantID, companyID, func(entries []domain.JournalEntry, _ map[string][]domain.JournalLine) {
		for _, e := range entries {
			if e.Status == domain.Reversed {
				if e.ReversingEntryID == nil {
					result.Errors = append(result.Errors, fmt.Sprintf("entry %s is REVERSED but has no reversing entry link", e.EntryID))
					continue
				}
				reversal, err := s.journalRepo.FindEntryByID(ctx, *e.ReversingEntryID)
				if err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("entry %s links reversal %s which could not be loaded: %v", e.EntryID, *e.ReversingEntryID, err))
					continue
				}
				if reversal.OriginalEntryID == nil || *reversal.OriginalEntryID != e.EntryID {
					result.Errors = append(result.Errors, fmt.Sprintf("reversal %s does not link back to original %s", reversal.EntryID, e.EntryID))
				}
				if reversal.Status != domain.Posted {
					result.Warnings = append(result.Warnings, fmt.Sprintf("reversal %s of entry %s is %s, expected POSTED", reversal.EntryID, e.EntryID, reversal.Status))
				}
			}
			if e.OriginalEntryID != nil && e.Status == domain.Reversed {
				result.Warnings = append(result.Warnings, fmt.Sprintf("entry %s is a reversal that was itself reversed", e.EntryID))
			}
		}
	})
	if err != nil {
		return result, err
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

// checkRevaluationSnapshots verifies that stored FX snapshots reference
// entries that still exist, scanning recent periods.
func (s *consistencyService) checkRevaluationSnapshots(ctx context.Context, tenantID, companyID string) (domain.CheckResult, error) {
	result := newCheckResult("revaluation_snapshots")

	period := domain.PeriodOf(time.Now().UTC())
	for i := 0; i < snapshotLookback; i++ {
		snapshot, err := s.closeout.FindRevaluationSnapshot(ctx, tenantID, companyID, period)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				period = previousPeriod(period)
				continue
			}
			return result, fmt.Errorf("failed to load snapshot for %s: %w", period, err)
		}
		if snapshot.EntryID != "" {
			if _, err := s.journalRepo.FindEntryByID(ctx, snapshot.EntryID); err != nil {
				if errors.Is(err, apperrors.ErrNotFound) {
					result.Errors = append(result.Errors, fmt.Sprintf("revaluation snapshot for %s references missing entry %s", period, snapshot.EntryID))
				} else {
					return result, fmt.Errorf("failed to verify snapshot entry %s: %w", snapshot.EntryID, err)
				}
			}
		}
		period = previousPeriod(period)
	}

	result.IsValid = len(result.Errors) == 0
	return result, nil
}

func previousPeriod(p domain.Period) domain.Period {
	return domain.PeriodOf(p.Start().AddDate(0, -1, 0))
}

// RunAll executes every check and aggregates the totals.
func (s *consistencyService) RunAll(ctx context.Context, tenantID, companyID string) (*domain.ValidationReport, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	checks := []func(context.Context, string, string) (domain.CheckResult, error){
		s.CheckAccountTypes,
		s.CheckEntryBalances,
		s.CheckOrphanLines,
		s.CheckReversalLinks,
		s.checkRevaluationSnapshots,
	}

	report := domain.ValidationReport{IsValid: true, RanAt: time.Now().UTC()}
	for _, check := range checks {
		result, err := check(ctx, tenantID, companyID)
		if err != nil {
			return nil, err
		}
		report.Results = append(report.Results, result)
		report.ErrorCount += len(result.Errors)
		report.WarningCount += len(result.Warnings)
		if !result.IsValid {
			report.IsValid = false
		}
	}
	return &report, nil
}

// forEachEntryPage pages through every entry of a company, loading lines per
// page, and hands each page to fn.
func (s *consistencyService) forEachEntryPage(ctx context.Context, tenantID, companyID string, fn func([]domain.JournalEntry, map[string][]domain.JournalLine)) error {
	var nextToken *string
	for {
		entries, token, err := s.journalRepo.ListEntries(ctx, tenantID, companyID, checkPageSize, nextToken)
		if err != nil {
			return fmt.Errorf("failed to page entries: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}

		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.EntryID
		}
		lines, err := s.journalRepo.FindLinesByEntryIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to load lines for entry page: %w", err)
		}

		fn(entries, lines)

		if token == nil {
			return nil
		}
		nextToken = token
	}
}

func newCheckResult(name string) domain.CheckResult {
	return domain.CheckResult{
		Name:        name,
		IsValid:     true,
		Errors:      []string{},
		Warnings:    []string{},
		Suggestions: []string{},
	}
}
