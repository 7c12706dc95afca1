package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	"github.com/closepilot/ledgercore/internal/models"
	"github.com/closepilot/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const templateColumns = `template_id, tenant_id, company_id, name, memo, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxTemplateRepository struct {
	BaseRepository
}

// newPgxTemplateRepository creates a new repository for recurring templates.
func newPgxTemplateRepository(pool *pgxpool.Pool) portsrepo.TemplateRepositoryFacade {
	return &PgxTemplateRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TemplateRepositoryFacade = (*PgxTemplateRepository)(nil)

func scanTemplate(row pgx.Row) (models.RecurringTemplate, error) {
	var m models.RecurringTemplate
	err := row.Scan(
		&m.TemplateID,
		&m.TenantID,
		&m.CompanyID,
		&m.Name,
		&m.Memo,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindTemplateByID retrieves a template with its recipe lines.
func (r *PgxTemplateRepository) FindTemplateByID(ctx context.Context, templateID string) (*domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates WHERE template_id = $1;`
	m, err := scanTemplate(r.Pool.QueryRow(ctx, query, templateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find template "+templateID, err)
	}

	lines, err := r.findTemplateLines(ctx, []string{templateID})
	if err != nil {
		return nil, err
	}
	t := mapping.ToDomainTemplate(m, lines[templateID])
	return &t, nil
}

// ListActiveTemplates retrieves all active templates of a company with lines.
func (r *PgxTemplateRepository) ListActiveTemplates(ctx context.Context, tenantID, companyID string) ([]domain.RecurringTemplate, error) {
	return r.listTemplates(ctx, tenantID, companyID, true)
}

// ListTemplates retrieves all templates of a company with lines.
func (r *PgxTemplateRepository) ListTemplates(ctx context.Context, tenantID, companyID string) ([]domain.RecurringTemplate, error) {
	return r.listTemplates(ctx, tenantID, companyID, false)
}

func (r *PgxTemplateRepository) listTemplates(ctx context.Context, tenantID, companyID string, activeOnly bool) ([]domain.RecurringTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM recurring_templates WHERE tenant_id = $1 AND company_id = $2`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name;`

	rows, err := r.Pool.Query(ctx, query, tenantID, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query templates for company "+companyID, err)
	}
	defer rows.Close()

	templateModels := []models.RecurringTemplate{}
	ids := []string{}
	for rows.Next() {
		m, err := scanTemplate(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan template row", err)
		}
		templateModels = append(templateModels, m)
		ids = append(ids, m.TemplateID)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating template rows", err)
	}

	lines, err := r.findTemplateLines(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]domain.RecurringTemplate, len(templateModels))
	for i, m := range templateModels {
		result[i] = mapping.ToDomainTemplate(m, lines[m.TemplateID])
	}
	return result, nil
}

func (r *PgxTemplateRepository) findTemplateLines(ctx context.Context, templateIDs []string) (map[string][]models.RecurringTemplateLine, error) {
	if len(templateIDs) == 0 {
		return map[string][]models.RecurringTemplateLine{}, nil
	}
	query := `
		SELECT template_line_id, template_id, role, debit, credit, memo, position
		FROM recurring_template_lines
		WHERE template_id = ANY($1)
		ORDER BY template_id, position;
	`
	rows, err := r.Pool.Query(ctx, query, templateIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query template lines", err)
	}
	defer rows.Close()

	result := make(map[string][]models.RecurringTemplateLine, len(templateIDs))
	for rows.Next() {
		var l models.RecurringTemplateLine
		if err := rows.Scan(&l.TemplateLineID, &l.TemplateID, &l.Role, &l.Debit, &l.Credit, &l.Memo, &l.Position); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan template line row", err)
		}
		result[l.TemplateID] = append(result[l.TemplateID], l)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating template line rows", err)
	}
	return result, nil
}

// SaveTemplate persists a template with its recipe lines in one transaction.
func (r *PgxTemplateRepository) SaveTemplate(ctx context.Context, template domain.RecurringTemplate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	m := mapping.ToModelTemplate(template)
	query := `
		INSERT INTO recurring_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err = tx.Exec(ctx, query,
		m.TemplateID,
		m.TenantID,
		m.CompanyID,
		m.Name,
		m.Memo,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert template "+m.TemplateID, err)
	}

	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO recurring_template_lines (template_line_id, template_id, role, debit, credit, memo, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	for i, l := range template.Lines {
		batch.Queue(lineQuery, uuid.NewString(), m.TemplateID, string(l.Role), l.Debit, l.Credit, l.Memo, i)
	}
	br := tx.SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return apperrors.NewAppError(500, "failed to insert template lines for "+m.TemplateID, err)
	}

	return r.Commit(ctx, tx)
}

// SetTemplateActive toggles a template's active flag.
func (r *PgxTemplateRepository) SetTemplateActive(ctx context.Context, templateID string, active bool, userID string, now time.Time) error {
	query := `
		UPDATE recurring_templates
		SET is_active = $2, last_updated_at = $3, last_updated_by = $4
		WHERE template_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query, templateID, active, now, userID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update template "+templateID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
