package domain

import (
	"fmt"
	"regexp"
	"time"
)

// Period identifies a calendar-month accounting bucket as "YYYY-MM".
type Period string

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// PeriodOf returns the period containing t (UTC).
func PeriodOf(t time.Time) Period {
	return Period(t.UTC().Format("2006-01"))
}

// ParsePeriod validates and returns a Period from its string form.
func ParsePeriod(s string) (Period, error) {
	if !periodPattern.MatchString(s) {
		return "", fmt.Errorf("invalid period %q, want YYYY-MM", s)
	}
	return Period(s), nil
}

// Start returns midnight UTC on the first day of the period's month.
func (p Period) Start() time.Time {
	t, _ := time.Parse("2006-01", string(p))
	return t
}

// End returns midnight UTC on the last day of the period's month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Next returns the immediately following calendar month.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

func (p Period) String() string {
	return string(p)
}

// PeriodStatus is the lock state of a (company, period) bucket.
type PeriodStatus string

const (
	PeriodOpen   PeriodStatus = "open"
	PeriodLocked PeriodStatus = "locked"
	PeriodClosed PeriodStatus = "closed"
)

// PeriodState is the stored lock state of a period, always attributed.
// A period with no stored state is open.
type PeriodState struct {
	Status    PeriodStatus `json:"status"`
	Actor     string       `json:"actor"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
