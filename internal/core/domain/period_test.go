package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/closepilot/ledgercore/internal/core/domain"
)

func TestPeriodOf(t *testing.T) {
	assert.Equal(t, domain.Period("2025-03"), domain.PeriodOf(time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)))
	assert.Equal(t, domain.Period("2025-12"), domain.PeriodOf(time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC)))

	// Local timestamps normalize to UTC before bucketing.
	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, domain.Period("2025-03"), domain.PeriodOf(time.Date(2025, 4, 1, 5, 0, 0, 0, loc)))
}

func TestParsePeriod(t *testing.T) {
	p, err := domain.ParsePeriod("2025-03")
	require.NoError(t, err)
	assert.Equal(t, domain.Period("2025-03"), p)

	for _, bad := range []string{"2025-13", "2025-0", "2025-3", "202503", "march", ""} {
		_, err := domain.ParsePeriod(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestPeriodBounds(t *testing.T) {
	p := domain.Period("2025-02")
	assert.True(t, p.Start().Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, p.End().Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)))

	leap := domain.Period("2024-02")
	assert.True(t, leap.End().Equal(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodNext(t *testing.T) {
	assert.Equal(t, domain.Period("2025-02"), domain.Period("2025-01").Next())
	assert.Equal(t, domain.Period("2026-01"), domain.Period("2025-12").Next())
}
