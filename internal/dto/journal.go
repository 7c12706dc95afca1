package dto

import (
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EntryLineRequest is one leg of an entry being posted.
type EntryLineRequest struct {
	AccountID  string          `json:"accountID" binding:"required"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo"`
	Department string          `json:"department"`
	Project    string          `json:"project"`
}

// PostEntryRequest creates a journal entry. AsDraft force-creates a DRAFT
// even when the lines do not balance, for later correction; POSTED always
// requires balance.
type PostEntryRequest struct {
	Date      time.Time          `json:"date" binding:"required"`
	Memo      string             `json:"memo" binding:"required"`
	Reference string             `json:"reference"`
	EntryType string             `json:"entryType"`
	AsDraft   bool               `json:"asDraft"`
	Lines     []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// ReplaceLinesRequest replaces the line set of a DRAFT entry wholesale.
type ReplaceLinesRequest struct {
	Lines []EntryLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// EntryResponse is the API shape of a journal entry.
type EntryResponse struct {
	EntryID          string          `json:"entryID"`
	CompanyID        string          `json:"companyID"`
	Date             time.Time       `json:"date"`
	Memo             string          `json:"memo"`
	Reference        string          `json:"reference"`
	EntryType        string          `json:"entryType"`
	Status           string          `json:"status"`
	OriginalEntryID  *string         `json:"originalEntryID,omitempty"`
	ReversingEntryID *string         `json:"reversingEntryID,omitempty"`
	Lines            []LineResponse  `json:"lines,omitempty"`
	TotalDebits      decimal.Decimal `json:"totalDebits"`
	TotalCredits     decimal.Decimal `json:"totalCredits"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

// LineResponse is the API shape of a journal line.
type LineResponse struct {
	LineID     string          `json:"lineID"`
	EntryID    string          `json:"entryID"`
	AccountID  string          `json:"accountID"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	Memo       string          `json:"memo"`
	Department string          `json:"department,omitempty"`
	Project    string          `json:"project,omitempty"`
}

// ListEntriesParams controls entry listing.
type ListEntriesParams struct {
	Limit        int     `form:"limit"`
	NextToken    *string `form:"nextToken"`
	IncludeLines bool    `form:"includeLines"`
}

// ListEntriesResponse is a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesParams controls account line listing.
type ListLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse is a page of lines for one account.
type ListLinesResponse struct {
	Lines     []LineResponse `json:"lines"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain entry to its API shape.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		CompanyID:        e.CompanyID,
		Date:             e.EntryDate,
		Memo:             e.Memo,
		Reference:        e.Reference,
		EntryType:        e.EntryType,
		Status:           string(e.Status),
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		TotalDebits:      e.TotalDebits(),
		TotalCredits:     e.TotalCredits(),
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if e.Lines != nil {
		resp.Lines = ToLineResponses(e.Lines)
	}
	return resp
}

// ToLineResponses converts domain lines to their API shape.
func ToLineResponses(lines []domain.JournalLine) []LineResponse {
	out := make([]LineResponse, len(lines))
	for i, l := range lines {
		out[i] = LineResponse{
			LineID:     l.LineID,
			EntryID:    l.EntryID,
			AccountID:  l.AccountID,
			Debit:      l.Debit,
			Credit:     l.Credit,
			Memo:       l.Memo,
			Department: l.Department,
			Project:    l.Project,
		}
	}
	return out
}
