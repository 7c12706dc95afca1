package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunType classifies a batch-process invocation in the run ledger.
type RunType string

const (
	RunRecurring          RunType = "recurring"
	RunFxRevaluation      RunType = "fx_revaluation"
	RunRevenueRecognition RunType = "revenue_recognition"
	RunAdjustment         RunType = "adjustment"
	RunRollback           RunType = "rollback"
)

// RunRecord is one append-only audit entry for a batch run or rollback
// marker, owned by its (company, period) bucket. Records are never deleted; a
// rollback is a new record referencing the original's id.
type RunRecord struct {
	RunID  string    `json:"runID"`
	Type   RunType   `json:"type"`
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Detail RunDetail `json:"detail"`
}

// RunDetail carries the typed payload of a run record. Which fields are set
// depends on the run type.
type RunDetail struct {
	EntryID     string          `json:"entryID,omitempty"`
	Posted      int             `json:"posted,omitempty"`
	Skipped     int             `json:"skipped,omitempty"`
	Failed      int             `json:"failed,omitempty"`
	PostedInto  Period          `json:"postedInto,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
	RollbackOf  string          `json:"rollbackOf,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
}
