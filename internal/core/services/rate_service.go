package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/closepilot/ledgercore/internal/apperrors"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
)

// rateService resolves conversion rates: stored rates first, then the static
// table from configuration. The static table maps a foreign code to its rate
// against the base currency.
type rateService struct {
	rateRepo     portsrepo.ExchangeRateRepository
	baseCurrency string
	staticRates  map[string]decimal.Decimal
}

// NewRateService creates a RateSource backed by persisted rates with a static
// configuration fallback.
func NewRateService(rateRepo portsrepo.ExchangeRateRepository, baseCurrency string, staticRates map[string]decimal.Decimal) portssvc.RateSource {
	normalized := make(map[string]decimal.Decimal, len(staticRates))
	for code, rate := range staticRates {
		normalized[strings.ToUpper(code)] = rate
	}
	return &rateService{
		rateRepo:     rateRepo,
		baseCurrency: strings.ToUpper(baseCurrency),
		staticRates:  normalized,
	}
}

var _ portssvc.RateSource = (*rateService)(nil)

// Rate returns the conversion rate from one currency to another.
func (s *rateService) Rate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error) {
	from := strings.ToUpper(fromCode)
	to := strings.ToUpper(toCode)
	if from == to {
		return decimal.NewFromInt(1), nil
	}

	stored, err := s.rateRepo.FindExchangeRate(ctx, from, to)
	if err == nil {
		return stored.Rate, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to look up exchange rate %s/%s: %w", from, to, err)
	}

	// Static table holds foreign-to-base rates only.
	if to == s.baseCurrency {
		if rate, ok := s.staticRates[from]; ok {
			return rate, nil
		}
	}
	if from == s.baseCurrency {
		if rate, ok := s.staticRates[to]; ok && rate.IsPositive() {
			return decimal.NewFromInt(1).Div(rate), nil
		}
	}

	// An empty fallback table means the deployment never wired one up, which
	// is a different failure than a genuinely missing pair.
	if len(s.staticRates) == 0 {
		return decimal.Zero, fmt.Errorf("%w: no static rate table for %s/%s", apperrors.ErrNotConfigured, from, to)
	}
	return decimal.Zero, fmt.Errorf("%w: no exchange rate for %s/%s", apperrors.ErrNotFound, from, to)
}
