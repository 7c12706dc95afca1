package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	"github.com/closepilot/ledgercore/internal/models"
	"github.com/closepilot/ledgercore/internal/utils/mapping"
	"github.com/closepilot/ledgercore/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const entryColumns = `entry_id, tenant_id, company_id, entry_date, memo, reference, entry_type, currency_code, status, original_entry_id, reversing_entry_id, created_at, created_by, last_updated_at, last_updated_by`

const lineColumns = `line_id, entry_id, account_id, debit, credit, memo, department, project, created_at, created_by, last_updated_at, last_updated_by`

type PgxJournalRepository struct {
	BaseRepository
	accountRepo   portsrepo.AccountRepositoryFacade
	inventoryRepo portsrepo.InventoryRepository
}

// newPgxJournalRepository creates a new repository for entry and line data.
func newPgxJournalRepository(pool *pgxpool.Pool, accountRepo portsrepo.AccountRepositoryFacade, inventoryRepo portsrepo.InventoryRepository) portsrepo.JournalRepositoryWithTx {
	return &PgxJournalRepository{
		BaseRepository: BaseRepository{Pool: pool},
		accountRepo:    accountRepo,
		inventoryRepo:  inventoryRepo,
	}
}

var _ portsrepo.JournalRepositoryWithTx = (*PgxJournalRepository)(nil)

func scanEntry(row pgx.Row) (models.JournalEntry, error) {
	var m models.JournalEntry
	err := row.Scan(
		&m.EntryID,
		&m.TenantID,
		&m.CompanyID,
		&m.EntryDate,
		&m.Memo,
		&m.Reference,
		&m.EntryType,
		&m.CurrencyCode,
		&m.Status,
		&m.OriginalEntryID,
		&m.ReversingEntryID,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func scanLine(row pgx.Row) (models.JournalLine, error) {
	var m models.JournalLine
	err := row.Scan(
		&m.LineID,
		&m.EntryID,
		&m.AccountID,
		&m.Debit,
		&m.Credit,
		&m.Memo,
		&m.Department,
		&m.Project,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveEntry persists an entry with its lines atomically. For POSTED entries
// the affected accounts are locked FOR UPDATE, their balances adjusted, and
// any inventory movements recorded, all in one database transaction.
func (r *PgxJournalRepository) SaveEntry(ctx context.Context, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, movements []domain.InventoryMovement) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck // no-op after commit

	if err := r.insertEntryInTx(ctx, tx, entry, lines, balanceChanges, movements); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// insertEntryInTx writes an entry, its lines, balance deltas and inventory
// movements on an already-open transaction.
func (r *PgxJournalRepository) insertEntryInTx(ctx context.Context, tx pgx.Tx, entry domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, movements []domain.InventoryMovement) error {
	m := mapping.ToModelEntry(entry)
	entryQuery := `
		INSERT INTO journal_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, entryQuery,
		m.EntryID,
		m.TenantID,
		m.CompanyID,
		m.EntryDate,
		m.Memo,
		m.Reference,
		m.EntryType,
		m.CurrencyCode,
		m.Status,
		m.OriginalEntryID,
		m.ReversingEntryID,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return markTransient(err, "failed to insert entry "+m.EntryID)
	}

	if len(balanceChanges) > 0 {
		accountIDs := make([]string, 0, len(balanceChanges))
		for id := range balanceChanges {
			accountIDs = append(accountIDs, id)
		}
		if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
			return markTransient(err, "failed to lock accounts for entry "+m.EntryID)
		}
		if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, entry.CreatedBy, entry.CreatedAt); err != nil {
			return markTransient(err, "failed to update account balances for entry "+m.EntryID)
		}
	}

	if err := insertLines(ctx, tx, lines); err != nil {
		return markTransient(err, "failed to insert lines for entry "+m.EntryID)
	}

	for _, movement := range movements {
		if err := r.inventoryRepo.RecordMovementInTx(ctx, tx, movement); err != nil {
			return markTransient(err, "failed to record inventory movement for entry "+m.EntryID)
		}
	}

	return nil
}

// SaveReversal persists the reversal entry and flips the original to REVERSED
// in one transaction, so a failure on either side leaves both entries
// untouched.
func (r *PgxJournalRepository) SaveReversal(ctx context.Context, reversal domain.JournalEntry, lines []domain.JournalLine, balanceChanges map[string]decimal.Decimal, originalEntryID string, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	if err := r.insertEntryInTx(ctx, tx, reversal, lines, balanceChanges, nil); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = $2, reversing_entry_id = $3, last_updated_at = $4, last_updated_by = $5
		WHERE entry_id = $1 AND status = 'POSTED';
	`, originalEntryID, string(domain.Reversed), reversal.EntryID, now, updatedBy)
	if err != nil {
		return markTransient(err, "failed to flip entry "+originalEntryID+" to REVERSED")
	}
	if tag.RowsAffected() == 0 {
		// The original was reversed or otherwise mutated concurrently.
		return fmt.Errorf("%w: entry %s is no longer POSTED", apperrors.ErrConflict, originalEntryID)
	}

	return r.Commit(ctx, tx)
}

func insertLines(ctx context.Context, tx pgx.Tx, lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	lineQuery := `
		INSERT INTO journal_lines (` + lineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	for _, line := range lines {
		lm := mapping.ToModelLine(line)
		batch.Queue(lineQuery,
			lm.LineID,
			lm.EntryID,
			lm.AccountID,
			lm.Debit,
			lm.Credit,
			lm.Memo,
			lm.Department,
			lm.Project,
			lm.CreatedAt,
			lm.CreatedBy,
			lm.LastUpdatedAt,
			lm.LastUpdatedBy,
		)
	}
	br := tx.SendBatch(ctx, batch)
	return br.Close()
}

// MarkEntryPosted flips a DRAFT entry to POSTED and applies balance deltas in
// one transaction.
func (r *PgxJournalRepository) MarkEntryPosted(ctx context.Context, entryID string, balanceChanges map[string]decimal.Decimal, updatedBy string, now time.Time) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE journal_entries
		SET status = 'POSTED', last_updated_at = $2, last_updated_by = $3
		WHERE entry_id = $1 AND status = 'DRAFT';
	`, entryID, now, updatedBy)
	if err != nil {
		return markTransient(err, "failed to mark entry posted "+entryID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConflict
	}

	if len(balanceChanges) > 0 {
		accountIDs := make([]string, 0, len(balanceChanges))
		for id := range balanceChanges {
			accountIDs = append(accountIDs, id)
		}
		if _, err := r.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs); err != nil {
			return markTransient(err, "failed to lock accounts for entry "+entryID)
		}
		if err := r.accountRepo.UpdateAccountBalancesInTx(ctx, tx, balanceChanges, updatedBy, now); err != nil {
			return markTransient(err, "failed to update balances for entry "+entryID)
		}
	}

	return r.Commit(ctx, tx)
}

// ReplaceDraftLines deletes and recreates the line set of an entry in one
// transaction. The caller guarantees the entry is a DRAFT.
func (r *PgxJournalRepository) ReplaceDraftLines(ctx context.Context, entryID string, lines []domain.JournalLine) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM journal_lines WHERE entry_id = $1;`, entryID); err != nil {
		return apperrors.NewAppError(500, "failed to delete lines for entry "+entryID, err)
	}
	if err := insertLines(ctx, tx, lines); err != nil {
		return apperrors.NewAppError(500, "failed to insert replacement lines for entry "+entryID, err)
	}

	return r.Commit(ctx, tx)
}

// FindEntryByID retrieves an entry by its ID, without lines.
func (r *PgxJournalRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM journal_entries WHERE entry_id = $1;`
	m, err := scanEntry(r.Pool.QueryRow(ctx, query, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find entry by ID "+entryID, err)
	}
	entry := mapping.ToDomainEntry(m)
	return &entry, nil
}

// ListEntries retrieves a page of a company's entries using token-based
// pagination with a stable (entry_date, created_at) cursor.
func (r *PgxJournalRepository) ListEntries(ctx context.Context, tenantID, companyID string, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `SELECT ` + entryColumns + ` FROM journal_entries`
	filterClause := `WHERE tenant_id = $1 AND company_id = $2`
	orderByClause := `ORDER BY entry_date DESC, created_at DESC`

	args := []interface{}{tenantID, companyID}
	query := baseQuery + " " + filterClause
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (entry_date, created_at) < ($3, $4)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query entries for company "+companyID, err)
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0, fetchLimit)
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}

	var nextTokenVal *string
	if len(entries) > limit {
		last := entries[limit-1]
		token := pagination.EncodeToken(last.EntryDate, last.CreatedAt)
		nextTokenVal = &token
		entries = entries[:limit]
	}

	result := make([]domain.JournalEntry, len(entries))
	for i, m := range entries {
		result[i] = mapping.ToDomainEntry(m)
	}
	return result, nextTokenVal, nil
}

// ListEntriesByDateRange retrieves all entries dated within [from, to].
func (r *PgxJournalRepository) ListEntriesByDateRange(ctx context.Context, tenantID, companyID string, from, to time.Time) ([]domain.JournalEntry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM journal_entries
		WHERE tenant_id = $1 AND company_id = $2 AND entry_date >= $3 AND entry_date <= $4
		ORDER BY entry_date, created_at;
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, companyID, from, to)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query entries by date range", err)
	}
	defer rows.Close()

	var result []domain.JournalEntry
	for rows.Next() {
		m, err := scanEntry(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan entry row", err)
		}
		result = append(result, mapping.ToDomainEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating entry rows", err)
	}
	return result, nil
}

// FindLinesByEntryID retrieves all lines of one entry.
func (r *PgxJournalRepository) FindLinesByEntryID(ctx context.Context, entryID string) ([]domain.JournalLine, error) {
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = $1 ORDER BY created_at, line_id;`
	rows, err := r.Pool.Query(ctx, query, entryID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entry "+entryID, err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row for entry "+entryID, err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows for entry "+entryID, err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}

// FindLinesByEntryIDs retrieves lines for multiple entries, grouped by entry ID.
func (r *PgxJournalRepository) FindLinesByEntryIDs(ctx context.Context, entryIDs []string) (map[string][]domain.JournalLine, error) {
	if len(entryIDs) == 0 {
		return map[string][]domain.JournalLine{}, nil
	}
	query := `SELECT ` + lineColumns + ` FROM journal_lines WHERE entry_id = ANY($1) ORDER BY created_at, line_id;`
	rows, err := r.Pool.Query(ctx, query, entryIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query lines for entries", err)
	}
	defer rows.Close()

	result := make(map[string][]domain.JournalLine, len(entryIDs))
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan line row", err)
		}
		result[m.EntryID] = append(result[m.EntryID], mapping.ToDomainLine(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating line rows", err)
	}
	return result, nil
}

// ListLinesByAccountID retrieves a page of lines touching one account,
// newest first, cursor on (entry_date, line created_at).
func (r *PgxJournalRepository) ListLinesByAccountID(ctx context.Context, tenantID, companyID, accountID string, limit int, nextToken *string) ([]domain.JournalLine, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchLimit := limit + 1

	baseQuery := `
		SELECT l.line_id, l.entry_id, l.account_id, l.debit, l.credit, l.memo, l.department, l.project,
		       l.created_at, l.created_by, l.last_updated_at, l.last_updated_by, e.entry_date
		FROM journal_lines l
		JOIN journal_entries e ON l.entry_id = e.entry_id
		WHERE l.account_id = $1 AND e.tenant_id = $2 AND e.company_id = $3 AND e.status = 'POSTED'
	`
	orderByClause := `ORDER BY e.entry_date DESC, l.created_at DESC`

	args := []interface{}{accountID, tenantID, companyID}
	query := baseQuery
	if nextToken != nil && *nextToken != "" {
		lastDate, lastCreatedAt, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		query += ` AND (e.entry_date, l.created_at) < ($4, $5)`
		args = append(args, lastDate, lastCreatedAt)
	}
	query += " " + orderByClause + " LIMIT $" + strconv.Itoa(len(args)+1) + ";"
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query lines for account "+accountID, err)
	}
	defer rows.Close()

	type lineWithDate struct {
		line      models.JournalLine
		entryDate time.Time
	}
	scanned := make([]lineWithDate, 0, fetchLimit)
	for rows.Next() {
		var m models.JournalLine
		var entryDate time.Time
		err := rows.Scan(
			&m.LineID,
			&m.EntryID,
			&m.AccountID,
			&m.Debit,
			&m.Credit,
			&m.Memo,
			&m.Department,
			&m.Project,
			&m.CreatedAt,
			&m.CreatedBy,
			&m.LastUpdatedAt,
			&m.LastUpdatedBy,
			&entryDate,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan line row for account "+accountID, err)
		}
		scanned = append(scanned, lineWithDate{line: m, entryDate: entryDate})
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating line rows for account "+accountID, err)
	}

	var nextTokenVal *string
	if len(scanned) > limit {
		last := scanned[limit-1]
		token := pagination.EncodeToken(last.entryDate, last.line.CreatedAt)
		nextTokenVal = &token
		scanned = scanned[:limit]
	}

	result := make([]domain.JournalLine, len(scanned))
	for i, s := range scanned {
		result[i] = mapping.ToDomainLine(s.line)
	}
	return result, nextTokenVal, nil
}

// FindOrphanLines retrieves lines whose parent entry or account row is
// missing, the raw material of the orphan consistency check.
func (r *PgxJournalRepository) FindOrphanLines(ctx context.Context, tenantID, companyID string) ([]domain.JournalLine, error) {
	// Scope via the parent entry when it exists; a line without a parent entry
	// cannot be scoped and is reported to every caller.
	query := `
		SELECT ` + lineColumns + ` FROM journal_lines l
		WHERE (
			NOT EXISTS (SELECT 1 FROM journal_entries e WHERE e.entry_id = l.entry_id)
			OR NOT EXISTS (SELECT 1 FROM accounts a WHERE a.account_id = l.account_id)
		)
		AND (
			NOT EXISTS (SELECT 1 FROM journal_entries e WHERE e.entry_id = l.entry_id)
			OR EXISTS (SELECT 1 FROM journal_entries e WHERE e.entry_id = l.entry_id AND e.tenant_id = $1 AND e.company_id = $2)
		);
	`
	rows, err := r.Pool.Query(ctx, query, tenantID, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query orphan lines", err)
	}
	defer rows.Close()

	lines := []models.JournalLine{}
	for rows.Next() {
		m, err := scanLine(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan orphan line row", err)
		}
		lines = append(lines, m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating orphan line rows", err)
	}
	return mapping.ToDomainLineSlice(lines), nil
}
