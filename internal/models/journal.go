package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalEntry is the journal_entries table row.
type JournalEntry struct {
	EntryID          string    `db:"entry_id"`
	TenantID         string    `db:"tenant_id"`
	CompanyID        string    `db:"company_id"`
	EntryDate        time.Time `db:"entry_date"`
	Memo             string    `db:"memo"`
	Reference        string    `db:"reference"`
	EntryType        string    `db:"entry_type"`
	CurrencyCode     string    `db:"currency_code"`
	Status           string    `db:"status"`
	OriginalEntryID  *string   `db:"original_entry_id"`  // Nullable
	ReversingEntryID *string   `db:"reversing_entry_id"` // Nullable
	AuditFields
}

// JournalLine is the journal_lines table row.
type JournalLine struct {
	LineID     string          `db:"line_id"`
	EntryID    string          `db:"entry_id"`
	AccountID  string          `db:"account_id"`
	Debit      decimal.Decimal `db:"debit"`
	Credit     decimal.Decimal `db:"credit"`
	Memo       string          `db:"memo"`
	Department string          `db:"department"`
	Project    string          `db:"project"`
	AuditFields
}
