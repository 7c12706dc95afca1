package repositories

import (
	"context"
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryReader defines read operations for journal entries
type EntryReader interface {
	// FindEntryByID retrieves a specific entry by its unique identifier.
	FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries for a company using token-based pagination.
	ListEntries(ctx context.Context, tenantID, companyID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error)

	// ListEntriesByDateRange retrieves all entries dated within [from, to], inclusive.
	ListEntriesByDateRange(ctx context.Context, tenantID, companyID string, from, to time.Time) ([]domain.JournalEntry, error)
}

// EntryWriter defines write operations for journal entries
type EntryWriter interface {
	// SaveEntry persists an entry with its lines atomically. For a POSTED
	// entry, balanceChanges is applied to the affected accounts and movements
	// (if any) are recorded, all in the same database transaction. For a
	// DRAFT entry both may be nil.
	SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, movements []domain.InventoryMovement) error

	// MarkEntryPosted flips a DRAFT entry to POSTED and applies balance deltas atomically.
	MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, updatedBy string, now time.Time) error

	// SaveReversal persists the reversal entry with its lines and balance
	// deltas, and flips the original entry to REVERSED with the back-link set,
	// all in one database transaction. Either both entries change or neither.
	SaveReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, originalEntryID string, updatedBy string, now time.Time) error

	// ReplaceDraftLines deletes and recreates the line set of a DRAFT entry.
	// The status guard lives in the service layer; the repository replaces
	// lines wholesale.
	ReplaceDraftLines(ctx context.Context, entryID string, lines []domain.JournalLine) error
}

// LineReader defines read operations for journal lines
type LineReader interface {
	// FindLinesByEntryID retrieves all lines of a single entry.
	FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error)

	// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
	FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error)

	// ListLinesByAccountID retrieves a paginated list of lines touching an account.
	ListLinesByAccountID(ctx context.Context, tenantID, companyID, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error)

	// FindOrphanLines retrieves lines whose parent entry or account row is missing.
	FindOrphanLines(ctx context.Context, tenantID, companyID string) ([]domain.JournalLine, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	EntryReader
	EntryWriter
	LineReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
