package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryStatus indicates the lifecycle state of a journal entry.
type EntryStatus string

const (
	Draft    EntryStatus = "DRAFT"
	Posted   EntryStatus = "POSTED"
	Reversed EntryStatus = "REVERSED"
)

// JournalEntry represents one atomic accounting event composed of balanced
// debit/credit lines. Entries are never mutated after POSTED except for the
// status flip to REVERSED performed by the paired reversal entry.
type JournalEntry struct {
	EntryID          string      `json:"entryID"`
	TenantID         string      `json:"tenantID"`
	CompanyID        string      `json:"companyID"`
	EntryDate        time.Time   `json:"entryDate"`
	Memo             string      `json:"memo"`
	Reference        string      `json:"reference"` // Business correlation string, e.g. source document id
	EntryType        string      `json:"entryType"` // e.g. "manual", "sale", "recurring", "fx_revaluation", "revenue_recognition", "adjustment"
	CurrencyCode     string      `json:"currencyCode"`
	Status           EntryStatus `json:"status"`
	OriginalEntryID  *string     `json:"originalEntryID,omitempty"`  // Set on a reversal entry, pointing at the entry it cancels
	ReversingEntryID *string     `json:"reversingEntryID,omitempty"` // Set on a reversed entry, pointing at its reversal

	// Lines are loaded on demand; nil means "not loaded", not "empty".
	Lines []JournalLine `json:"lines,omitempty"`
	AuditFields
}

// TotalDebits sums the debit side of the loaded lines.
func (e *JournalEntry) TotalDebits() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range e.Lines {
		sum = sum.Add(l.Debit)
	}
	return sum
}

// TotalCredits sums the credit side of the loaded lines.
func (e *JournalEntry) TotalCredits() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range e.Lines {
		sum = sum.Add(l.Credit)
	}
	return sum
}

// JournalLine is one leg of an entry, affecting a single account. Debit and
// credit are non-negative; by convention exactly one is nonzero per line, but
// that convention is not enforced.
type JournalLine struct {
	LineID     string          `json:"lineID"`
	EntryID    string          `json:"entryID"`
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo"`
	Department string          `json:"department,omitempty"`
	Project    string          `json:"project,omitempty"`
	AuditFields
}
