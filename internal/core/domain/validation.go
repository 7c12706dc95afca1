package domain

import "time"

// CheckResult is the outcome of one consistency check. Issues are data, not
// exceptions: a failing check still returns normally.
type CheckResult struct {
	Name        string   `json:"name"`
	IsValid     bool     `json:"isValid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ValidationReport aggregates every check in a RunAll pass.
type ValidationReport struct {
	Results      []CheckResult `json:"results"`
	ErrorCount   int           `json:"errorCount"`
	WarningCount int           `json:"warningCount"`
	IsValid      bool          `json:"isValid"`
	RanAt        time.Time     `json:"ranAt"`
}
