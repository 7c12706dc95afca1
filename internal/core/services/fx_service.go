package services

import (
	"context"
	"errors"
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
)

// fxService revalues foreign-currency account balances against the company
// base currency at period end.
type fxService struct {
	accountRepo portsrepo.AccountReader
	rateSource  portssvc.RateSource
	journalSvc  portssvc.JournalSvcFacade
	directory   portssvc.AccountDirectorySvcFacade
	companySvc  portssvc.CompanySvcFacade
	closeout    portsrepo.CloseoutStore
}

// NewFxService creates a new FX revaluation service.
func NewFxService(
	accountRepo portsrepo.AccountReader,
	rateSource portssvc.RateSource,
	journalSvc portssvc.JournalSvcFacade,
	directory portssvc.AccountDirectorySvcFacade,
	companySvc portssvc.CompanySvcFacade,
	closeout portsrepo.CloseoutStore,
) portssvc.FxRevaluationSvcFacade {
	return &fxService{
		accountRepo: accountRepo,
		rateSource:  rateSource,
		journalSvc:  journalSvc,
		directory:   directory,
		companySvc:  companySvc,
		closeout:    closeout,
	}
}

var _ portssvc.FxRevaluationSvcFacade = (*fxService)(nil)

// PreviewRevaluation computes the revaluation for every active
// foreign-denominated account without posting anything. Accounts whose rate
// cannot be resolved are reported in Errors rather than failing the preview.
func (s *fxService) PreviewRevaluation(ctx context.Context, tenantID, companyID string, period domain.Period) (*dto.RevaluationPreviewResponse, error) {
	lines, errs, err := s.compute(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	return &dto.RevaluationPreviewResponse{
		Period: period.String(),
		Lines:  dto.ToRevaluationLineResponses(lines),
		Errors: errs,
	}, nil
}

// compute builds the revaluation line set: for each active account whose
// currency differs from the company base, Revaluation = BaseBalance -
// ForeignBalance with BaseBalance = ForeignBalance * rate.
func (s *fxService) compute(ctx context.Context, tenantID, companyID string) ([]domain.RevaluationLine, []string, error) {
	company, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID)
	if err != nil {
		return nil, nil, err
	}
	base := strings.ToUpper(company.BaseCurrencyCode)

	accounts, err := s.accountRepo.ListForeignCurrencyAccounts(ctx, tenantID, companyID, base)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list foreign currency accounts: %w", err)
	}

	var lines []domain.RevaluationLine
	var errs []string
	for _, acc := range accounts {
		rate, err := s.rateSource.Rate(ctx, acc.CurrencyCode, base)
		if err != nil {
			errs = append(errs, fmt.Sprintf("account %s (%s): %v", acc.AccountID, acc.CurrencyCode, err))
			continue
		}
		baseBalance := acc.Balance.Mul(rate).Round(2)
		lines = append(lines, domain.RevaluationLine{
			CurrencyCode:   acc.CurrencyCode,
			AccountID:      acc.AccountID,
			ForeignBalance: acc.Balance,
			Rate:           rate,
			BaseBalance:    baseBalance,
			Revaluation:    baseBalance.Sub(acc.Balance),
		})
	}
	return lines, errs, nil
}

// PostRevaluation posts one entry for the period's revaluation and stores the
// snapshot, overwriting any earlier snapshot for the same period. Each
// nonzero currency gets its own debit/credit pair; gains and losses are never
// netted against each other.
func (s *fxService) PostRevaluation(ctx context.Context, tenantID, companyID string, period domain.Period, actor string) (*dto.PostRevaluationResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	lines, errs, err := s.compute(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: unresolved rates: %s", apperrors.ErrValidation, strings.Join(errs, "; "))
	}

	var entryLines []dto.EntryLineRequest
	for _, rl := range lines {
		if rl.Revaluation.IsZero() {
			continue
		}
		amount := rl.Revaluation.Abs()
		if rl.Revaluation.IsPositive() {
			// FX loss: expense recognized, foreign account written down.
			lossAcc, err := s.directory.Resolve(ctx, tenantID, companyID, domain.RoleFxLoss, actor)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve fxLoss account: %w", err)
			}
			entryLines = append(entryLines,
				dto.EntryLineRequest{AccountID: lossAcc.AccountID, Debit: amount, Memo: "FX loss " + rl.CurrencyCode},
				dto.EntryLineRequest{AccountID: rl.AccountID, Credit: amount, Memo: "Revaluation " + rl.CurrencyCode},
			)
		} else {
			gainAcc, err := s.directory.Resolve(ctx, tenantID, companyID, domain.RoleFxGain, actor)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve fxGain account: %w", err)
			}
			entryLines = append(entryLines,
				dto.EntryLineRequest{AccountID: rl.AccountID, Debit: amount, Memo: "Revaluation " + rl.CurrencyCode},
				dto.EntryLineRequest{AccountID: gainAcc.AccountID, Credit: amount, Memo: "FX gain " + rl.CurrencyCode},
			)
		}
	}

	resp := dto.PostRevaluationResponse{
		Period: period.String(),
		Lines:  dto.ToRevaluationLineResponses(lines),
	}

	var entryID string
	if len(entryLines) > 0 {
		entry, err := s.journalSvc.PostEntry(ctx, tenantID, companyID, dto.PostEntryRequest{
			Date:      period.End(),
			Memo:      "FX revaluation " + period.String(),
			Reference: "FX-" + period.String(),
			EntryType: "fx_revaluation",
			Lines:     entryLines,
		}, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to post revaluation entry: %w", err)
		}
		entryID = entry.EntryID
		resp.EntryID = entryID
	} else {
		logger.Info("No nonzero revaluations, skipping entry", slog.String("period", period.String()))
	}

	now := time.Now().UTC()
	snapshot := domain.RevaluationSnapshot{
		TenantID:  tenantID,
		CompanyID: companyID,
		Period:    period,
		Lines:     lines,
		EntryID:   entryID,
		PostedAt:  now,
		PostedBy:  actor,
	}
	if err := s.closeout.SaveRevaluationSnapshot(ctx, snapshot); err != nil {
		logger.Error("Failed to save revaluation snapshot", slog.String("period", period.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("revaluation posted but snapshot save failed: %w", err)
	}

	run := domain.RunRecord{
		RunID: uuid.NewString(),
		Type:  domain.RunFxRevaluation,
		At:    now,
		Actor: actor,
		Detail: domain.RunDetail{
			EntryID: entryID,
			Posted:  len(entryLines) / 2,
			Amount:  totalRevaluation(lines),
		},
	}
	if err := s.closeout.AppendRun(ctx, tenantID, companyID, period, run); err != nil {
		logger.Error("Failed to append revaluation run record", slog.String("period", period.String()), slog.String("error", err.Error()))
		return nil, fmt.Errorf("revaluation posted but run record append failed: %w", err)
	}

	logger.Info("FX revaluation posted", slog.String("period", period.String()), slog.String("entry_id", entryID), slog.Int("currencies", len(lines)))
	return &resp, nil
}

func totalRevaluation(lines []domain.RevaluationLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Revaluation.Abs())
	}
	return total
}

// GetRevaluationHistory retrieves the stored snapshot for a period.
func (s *fxService) GetRevaluationHistory(ctx context.Context, tenantID, companyID string, period domain.Period) (*domain.RevaluationSnapshot, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}
	snapshot, err := s.closeout.FindRevaluationSnapshot(ctx, tenantID, companyID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no revaluation snapshot for %s", apperrors.ErrNotFound, period)
		}
		return nil, fmt.Errorf("failed to load revaluation snapshot for %s: %w", period, err)
	}
	return snapshot, nil
}
