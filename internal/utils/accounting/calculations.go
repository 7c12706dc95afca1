package accounting

import (
	"fmt"
	"time"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Tolerance is the rounding tolerance, in base currency units, within which a
// posted entry's debits and credits must agree.
var Tolerance = decimal.NewFromFloat(0.01)

// SignedAmount converts a line's debit/credit pair into the signed balance
// delta for its account, per the usual convention:
// debit increases ASSET/EXPENSE, credit increases LIABILITY/EQUITY/REVENUE.
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	net := line.Debit.Sub(line.Credit)
	switch accountType {
	case domain.Asset, domain.Expense:
		return net, nil
	case domain.Liability, domain.Equity, domain.Revenue:
		return net.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' for account ID %s", accountType, line.AccountID)
	}
}

// CheckBalanced verifies the double-entry invariant over a line set. It
// returns an *apperrors.UnbalancedError carrying the computed sums when the
// difference exceeds Tolerance.
func CheckBalanced(lines []domain.JournalLine) error {
	debits := decimal.Zero
	credits := decimal.Zero
	for _, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line amounts must be non-negative for account %s", apperrors.ErrValidation, l.AccountID)
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	if debits.Sub(credits).Abs().GreaterThan(Tolerance) {
		return &apperrors.UnbalancedError{Debits: debits, Credits: credits}
	}
	return nil
}

// BalanceChanges aggregates the signed per-account deltas a line set implies,
// given each account's type.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accountTypes))
	for _, l := range lines {
		accountType, ok := accountTypes[l.AccountID]
		if !ok {
			return nil, fmt.Errorf("account type not found for account ID %s", l.AccountID)
		}
		signed, err := SignedAmount(l, accountType)
		if err != nil {
			return nil, err
		}
		changes[l.AccountID] = changes[l.AccountID].Add(signed)
	}
	return changes, nil
}

// OverlapDays returns the inclusive day count of the overlap between
// [aStart, aEnd] and [bStart, bEnd]; zero when they do not overlap.
func OverlapDays(aStart, aEnd, bStart, bEnd time.Time) int {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if end.Before(start) {
		return 0
	}
	return DaysInclusive(start, end)
}

// DaysInclusive counts calendar days from start to end, both inclusive.
func DaysInclusive(start, end time.Time) int {
	s := start.UTC().Truncate(24 * time.Hour)
	e := end.UTC().Truncate(24 * time.Hour)
	return int(e.Sub(s).Hours()/24) + 1
}

// Prorate splits amount proportionally to overlapDays out of totalDays,
// rounded to 2 decimals.
func Prorate(amount decimal.Decimal, overlapDays, totalDays int) decimal.Decimal {
	if totalDays <= 0 || overlapDays <= 0 {
		return decimal.Zero
	}
	return amount.
		Mul(decimal.NewFromInt(int64(overlapDays))).
		Div(decimal.NewFromInt(int64(totalDays))).
		Round(2)
}
