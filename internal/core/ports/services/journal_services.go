package services

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/dto"
)

// EntryReaderSvc defines read operations for journal entries
type EntryReaderSvc interface {
	// GetEntryByID retrieves an entry with its lines.
	GetEntryByID(ctx context.Context, tenantID, companyID, entryID string) (*domain.JournalEntry, error)

	// ListEntries retrieves a paginated list of entries for a company.
	ListEntries(ctx context.Context, tenantID, companyID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)

	// ListLinesByAccount retrieves a paginated list of lines touching one account.
	ListLinesByAccount(ctx context.Context, tenantID, companyID, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error)
}

// EntryWriterSvc defines write operations for journal entries
type EntryWriterSvc interface {
	// PostEntry validates and persists a new entry, POSTED by default or
	// DRAFT when requested.
	PostEntry(ctx context.Context, tenantID, companyID string, req dto.PostEntryRequest, actor string) (*domain.JournalEntry, error)

	// PostDraft transitions a DRAFT entry to POSTED after balance validation.
	PostDraft(ctx context.Context, tenantID, companyID, entryID, actor string) (*domain.JournalEntry, error)

	// ReverseEntry creates the paired reversal of a posted entry and flips
	// the original to REVERSED.
	ReverseEntry(ctx context.Context, tenantID, companyID, entryID, actor string) (*domain.JournalEntry, error)

	// ReplaceDraftLines replaces a DRAFT entry's lines wholesale.
	ReplaceDraftLines(ctx context.Context, tenantID, companyID, entryID string, req dto.ReplaceLinesRequest, actor string) (*domain.JournalEntry, error)

	// PostSale composes and posts the canonical entry for a cash sale,
	// recording inventory movements in the same unit of work.
	PostSale(ctx context.Context, tenantID, companyID string, req dto.PostSaleRequest, actor string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	EntryReaderSvc
	EntryWriterSvc
}
