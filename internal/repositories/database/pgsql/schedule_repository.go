package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	"github.com/closepilot/ledgercore/internal/models"
	"github.com/closepilot/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const scheduleColumns = `schedule_id, tenant_id, company_id, start_date, end_date, amount, method, currency_code, description, created_at, created_by, last_updated_at, last_updated_by`

type PgxScheduleRepository struct {
	BaseRepository
}

// newPgxScheduleRepository creates a new repository for recognition schedules.
func newPgxScheduleRepository(pool *pgxpool.Pool) portsrepo.ScheduleRepositoryFacade {
	return &PgxScheduleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ScheduleRepositoryFacade = (*PgxScheduleRepository)(nil)

func scanSchedule(row pgx.Row) (models.RecognitionSchedule, error) {
	var m models.RecognitionSchedule
	err := row.Scan(
		&m.ScheduleID,
		&m.TenantID,
		&m.CompanyID,
		&m.StartDate,
		&m.EndDate,
		&m.Amount,
		&m.Method,
		&m.CurrencyCode,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindScheduleByID retrieves a specific schedule.
func (r *PgxScheduleRepository) FindScheduleByID(ctx context.Context, scheduleID string) (*domain.RecognitionSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM recognition_schedules WHERE schedule_id = $1;`
	m, err := scanSchedule(r.Pool.QueryRow(ctx, query, scheduleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find schedule "+scheduleID, err)
	}
	s := mapping.ToDomainSchedule(m)
	return &s, nil
}

// ListSchedules retrieves all schedules for a company.
func (r *PgxScheduleRepository) ListSchedules(ctx context.Context, tenantID, companyID string) ([]domain.RecognitionSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM recognition_schedules WHERE tenant_id = $1 AND company_id = $2 ORDER BY start_date;`
	return r.querySchedules(ctx, query, tenantID, companyID)
}

// ListSchedulesOverlapping retrieves schedules whose span overlaps [from, to].
func (r *PgxScheduleRepository) ListSchedulesOverlapping(ctx context.Context, tenantID, companyID string, from, to time.Time) ([]domain.RecognitionSchedule, error) {
	query := `
		SELECT ` + scheduleColumns + ` FROM recognition_schedules
		WHERE tenant_id = $1 AND company_id = $2 AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date;
	`
	return r.querySchedules(ctx, query, tenantID, companyID, from, to)
}

func (r *PgxScheduleRepository) querySchedules(ctx context.Context, query string, args ...interface{}) ([]domain.RecognitionSchedule, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query schedules", err)
	}
	defer rows.Close()

	schedules := []models.RecognitionSchedule{}
	for rows.Next() {
		m, err := scanSchedule(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan schedule row", err)
		}
		schedules = append(schedules, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating schedule rows", err)
	}
	return mapping.ToDomainScheduleSlice(schedules), nil
}

// SaveSchedule persists a new schedule.
func (r *PgxScheduleRepository) SaveSchedule(ctx context.Context, schedule domain.RecognitionSchedule) error {
	m := mapping.ToModelSchedule(schedule)
	query := `
		INSERT INTO recognition_schedules (` + scheduleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ScheduleID,
		m.TenantID,
		m.CompanyID,
		m.StartDate,
		m.EndDate,
		m.Amount,
		m.Method,
		m.CurrencyCode,
		m.Description,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save schedule "+m.ScheduleID, err)
	}
	return nil
}

// DeleteSchedule removes a schedule.
func (r *PgxScheduleRepository) DeleteSchedule(ctx context.Context, scheduleID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM recognition_schedules WHERE schedule_id = $1;`, scheduleID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete schedule "+scheduleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
