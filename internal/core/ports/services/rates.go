package services

import (
	"context"

	"github.com/shopspring/decimal"
)

// RateSource is the currency-rate lookup capability consumed by the FX
// revaluation engine. Implementations may consult stored rates, an external
// provider, a static table, or a chain of those. Unknown pairs return
// apperrors.ErrNotFound.
type RateSource interface {
	Rate(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}
