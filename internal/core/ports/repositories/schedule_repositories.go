package repositories

import (
	"context"
	"time"

	"github.com/closepilot/ledgercore/internal/core/domain"
)

// ScheduleReader defines read operations for revenue recognition schedules
type ScheduleReader interface {
	// FindScheduleByID retrieves a specific schedule.
	FindScheduleByID(ctx context.Context, scheduleID string) (*domain.RecognitionSchedule, error)

	// ListSchedules retrieves all schedules for a company.
	ListSchedules(ctx context.Context, tenantID, companyID string) ([]domain.RecognitionSchedule, error)

	// ListSchedulesOverlapping retrieves schedules whose [start, end] span
	// overlaps [from, to].
	ListSchedulesOverlapping(ctx context.Context, tenantID, companyID string, from, to time.Time) ([]domain.RecognitionSchedule, error)
}

// ScheduleWriter defines write operations for revenue recognition schedules
type ScheduleWriter interface {
	// SaveSchedule persists a new schedule. Schedules are immutable once
	// created; there is deliberately no update operation.
	SaveSchedule(ctx context.Context, schedule domain.RecognitionSchedule) error

	// DeleteSchedule removes a schedule.
	DeleteSchedule(ctx context.Context, scheduleID string) error
}

// ScheduleRepositoryFacade combines schedule repository interfaces
type ScheduleRepositoryFacade interface {
	ScheduleReader
	ScheduleWriter
}
