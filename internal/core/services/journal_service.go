package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
	"github.com/closepilot/ledgercore/internal/dto"
	"github.com/closepilot/ledgercore/internal/middleware"
	"github.com/closepilot/ledgercore/internal/utils/accounting"
)

const (
	defaultPostingTimeout = 5 * time.Second

	// Posting is not idempotent beyond the caller-supplied reference, so the
	// retry bound for transient store failures stays small.
	maxSaveAttempts = 3
)

// journalService provides the core ledger operations: posting, reversal and
// draft-line replacement.
type journalService struct {
	entryRepo     portsrepo.JournalRepositoryWithTx
	inventoryRepo portsrepo.InventoryRepository
	directory     portssvc.AccountDirectorySvcFacade
	companySvc    portssvc.CompanySvcFacade
	closeout      portsrepo.CloseoutStore
	txTimeout     time.Duration
}

// NewJournalService creates a new journal service.
func NewJournalService(
	entryRepo portsrepo.JournalRepositoryWithTx,
	inventoryRepo portsrepo.InventoryRepository,
	directory portssvc.AccountDirectorySvcFacade,
	companySvc portssvc.CompanySvcFacade,
	closeout portsrepo.CloseoutStore,
	txTimeout time.Duration,
) portssvc.JournalSvcFacade {
	if txTimeout <= 0 {
		txTimeout = defaultPostingTimeout
	}
	return &journalService{
		entryRepo:     entryRepo,
		inventoryRepo: inventoryRepo,
		directory:     directory,
		companySvc:    companySvc,
		closeout:      closeout,
		txTimeout:     txTimeout,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// guardPeriodOpen rejects postings dated inside a locked or closed period.
// Absence of a stored state means open.
func (s *journalService) guardPeriodOpen(ctx context.Context, tenantID, companyID string, date time.Time) error {
	period := domain.PeriodOf(date)
	state, err := s.closeout.GetPeriodState(ctx, tenantID, companyID, period)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to read period state for %s: %w", period, err)
	}
	if state.Status != domain.PeriodOpen {
		return fmt.Errorf("%w: period %s is %s, postings must target an open period", apperrors.ErrValidation, period, state.Status)
	}
	return nil
}

// validateAccounts fetches the referenced accounts and checks ownership and
// activity, returning the type map balance calculations need.
func (s *journalService) validateAccounts(ctx context.Context, tenantID, companyID string, lines []domain.JournalLine) (map[string]domain.AccountType, error) {
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.AccountID)
	}
	ids = uniqueStrings(ids)

	accounts, err := s.directory.GetAccountsByIDs(ctx, tenantID, companyID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	types := make(map[string]domain.AccountType, len(ids))
	for _, id := range ids {
		acc, found := accounts[id]
		if !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		types[id] = acc.AccountType
	}
	return types, nil
}

func buildLines(entryID string, reqs []dto.EntryLineRequest, actor string, now time.Time) ([]domain.JournalLine, error) {
	lines := make([]domain.JournalLine, len(reqs))
	for i, lr := range reqs {
		if lr.Debit.IsNegative() || lr.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: line amounts must be non-negative for account %s", apperrors.ErrValidation, lr.AccountID)
		}
		lines[i] = domain.JournalLine{
			LineID:     uuid.NewString(),
			EntryID:    entryID,
			AccountID:  lr.AccountID,
			Debit:      lr.Debit,
			Credit:     lr.Credit,
			Memo:       lr.Memo,
			Department: lr.Department,
			Project:    lr.Project,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor,
				LastUpdatedAt: now,
				LastUpdatedBy: actor,
			},
		}
	}
	return lines, nil
}

// PostEntry validates and persists a new journal entry. POSTED entries must
// balance within the accounting tolerance; a caller may force-create an
// unbalanced DRAFT for later correction.
func (s *journalService) PostEntry(ctx context.Context, tenantID, companyID string, req dto.PostEntryRequest, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	company, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}

	if len(req.Lines) < 2 {
		return nil, fmt.Errorf("%w: an entry needs at least two lines", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines, err := buildLines(entryID, req.Lines, actor, now)
	if err != nil {
		return nil, err
	}

	status := domain.Posted
	if req.AsDraft {
		status = domain.Draft
	}

	// Account resolution happens before the transactional boundary opens.
	accountTypes, err := s.validateAccounts(ctx, tenantID, companyID, lines)
	if err != nil {
		return nil, err
	}

	var balanceChanges map[string]decimal.Decimal
	if status == domain.Posted {
		if err := accounting.CheckBalanced(lines); err != nil {
			return nil, err
		}
		if err := s.guardPeriodOpen(ctx, tenantID, companyID, req.Date); err != nil {
			return nil, err
		}
		balanceChanges, err = accounting.BalanceChanges(lines, accountTypes)
		if err != nil {
			return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
		}
	}

	entryType := req.EntryType
	if entryType == "" {
		entryType = "manual"
	}

	entry := domain.JournalEntry{
		EntryID:      entryID,
		TenantID:     tenantID,
		CompanyID:    companyID,
		EntryDate:    req.Date,
		Memo:         req.Memo,
		Reference:    req.Reference,
		EntryType:    entryType,
		CurrencyCode: company.BaseCurrencyCode,
		Status:       status,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	if err := s.saveWithRetry(ctx, func(saveCtx context.Context) error {
		return s.entryRepo.SaveEntry(saveCtx, entry, lines, balanceChanges, nil)
	}); err != nil {
		logger.Error("Failed to save journal entry", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	logger.Info("Journal entry created", slog.String("entry_id", entryID), slog.String("status", string(status)), slog.String("company_id", companyID))
	entry.Lines = lines
	return &entry, nil
}

// PostDraft transitions a DRAFT entry to POSTED. The balance invariant is
// enforced at this point, not at draft creation.
func (s *journalService) PostDraft(ctx context.Context, tenantID, companyID, entryID, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.loadScopedEntry(ctx, tenantID, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s, only DRAFT entries can be posted", apperrors.ErrConflict, entryID, entry.Status)
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNoLines, entryID)
	}

	if err := accounting.CheckBalanced(lines); err != nil {
		return nil, err
	}
	if err := s.guardPeriodOpen(ctx, tenantID, companyID, entry.EntryDate); err != nil {
		return nil, err
	}

	accountTypes, err := s.validateAccounts(ctx, tenantID, companyID, lines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	now := time.Now().UTC()
	if err := s.saveWithRetry(ctx, func(saveCtx context.Context) error {
		return s.entryRepo.MarkEntryPosted(saveCtx, entryID, balanceChanges, actor, now)
	}); err != nil {
		logger.Error("Failed to post draft entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to post draft: %w", err)
	}

	entry.Status = domain.Posted
	entry.LastUpdatedAt = now
	entry.LastUpdatedBy = actor
	entry.Lines = lines
	logger.Info("Draft entry posted", slog.String("entry_id", entryID))
	return entry, nil
}

// ReverseEntry creates the paired reversal of a posted entry: a new POSTED
// entry with every line's debit and credit swapped, and the original flipped
// to REVERSED. This is the only sanctioned way to undo a posted entry.
func (s *journalService) ReverseEntry(ctx context.Context, tenantID, companyID, entryID, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.loadScopedEntry(ctx, tenantID, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if original.Status != domain.Posted {
		return nil, fmt.Errorf("%w: entry status is %s, expected POSTED", apperrors.ErrConflict, original.Status)
	}
	if original.OriginalEntryID != nil {
		return nil, fmt.Errorf("%w: cannot reverse an entry that is already a reversal", apperrors.ErrConflict)
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	if len(originalLines) == 0 {
		return nil, fmt.Errorf("%w: entry %s", apperrors.ErrNoLines, entryID)
	}

	if err := s.guardPeriodOpen(ctx, tenantID, companyID, original.EntryDate); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	reversal := domain.JournalEntry{
		EntryID:         reversalID,
		TenantID:        tenantID,
		CompanyID:       companyID,
		EntryDate:       original.EntryDate,
		Memo:            "Reversal: " + original.Memo,
		Reference:       "REV-" + original.EntryID,
		EntryType:       original.EntryType,
		CurrencyCode:    original.CurrencyCode,
		Status:          domain.Posted,
		OriginalEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor,
			LastUpdatedAt: now,
			LastUpdatedBy: actor,
		},
	}

	reversalLines := make([]domain.JournalLine, len(originalLines))
	for i, ol := range originalLines {
		reversalLines[i] = domain.JournalLine{
			LineID:     uuid.NewString(),
			EntryID:    reversalID,
			AccountID:  ol.AccountID,
			Debit:      ol.Credit,
			Credit:     ol.Debit,
			Memo:       ol.Memo,
			Department: ol.Department,
			Project:    ol.Project,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor,
				LastUpdatedAt: now,
				LastUpdatedBy: actor,
			},
		}
	}

	accountTypes, err := s.validateAccounts(ctx, tenantID, companyID, reversalLines)
	if err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(reversalLines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate balance changes for reversal: %w", err)
	}

	// Saving the reversal and flipping the original share one database
	// transaction so a failure cannot leave a durable reversal next to a
	// still-POSTED original.
	if err := s.saveWithRetry(ctx, func(saveCtx context.Context) error {
		return s.entryRepo.SaveReversal(saveCtx, reversal, reversalLines, balanceChanges, original.EntryID, actor, now)
	}); err != nil {
		logger.Error("Failed to save reversal entry", slog.String("error", err.Error()), slog.String("original_entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal: %w", err)
	}

	logger.Info("Entry reversed", slog.String("original_entry_id", entryID), slog.String("reversal_entry_id", reversalID))
	reversal.Lines = reversalLines
	return &reversal, nil
}

// ReplaceDraftLines deletes and recreates a DRAFT entry's lines wholesale.
// POSTED and REVERSED entries are immutable.
func (s *journalService) ReplaceDraftLines(ctx context.Context, tenantID, companyID, entryID string, req dto.ReplaceLinesRequest, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.loadScopedEntry(ctx, tenantID, companyID, entryID)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s", apperrors.ErrImmutable, entryID, entry.Status)
	}

	now := time.Now().UTC()
	lines, err := buildLines(entryID, req.Lines, actor, now)
	if err != nil {
		return nil, err
	}
	if _, err := s.validateAccounts(ctx, tenantID, companyID, lines); err != nil {
		return nil, err
	}

	if err := s.entryRepo.ReplaceDraftLines(ctx, entryID, lines); err != nil {
		logger.Error("Failed to replace draft lines", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to replace draft lines: %w", err)
	}

	logger.Info("Draft lines replaced", slog.String("entry_id", entryID), slog.Int("line_count", len(lines)))
	entry.Lines = lines
	return entry, nil
}

// PostSale composes the canonical entry for a cash sale with discount, tax
// and cost-of-goods legs, and records the stock movements in the same
// transaction as the entry.
func (s *journalService) PostSale(ctx context.Context, tenantID, companyID string, req dto.PostSaleRequest, actor string) (*domain.JournalEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	company, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID)
	if err != nil {
		return nil, err
	}
	if req.Subtotal.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: sale subtotal must be positive", apperrors.ErrValidation)
	}
	if req.Discount.IsNegative() || req.Tax.IsNegative() {
		return nil, fmt.Errorf("%w: discount and tax must be non-negative", apperrors.ErrValidation)
	}

	if err := s.guardPeriodOpen(ctx, tenantID, companyID, req.Date); err != nil {
		return nil, err
	}

	// Resolve every role before the transactional boundary opens.
	roles := []domain.AccountRole{domain.RoleCash, domain.RoleRevenue, domain.RoleSalesDiscounts, domain.RoleTaxPayable, domain.RoleCOGS, domain.RoleInventory}
	resolved := make(map[domain.AccountRole]*domain.Account, len(roles))
	accountTypes := make(map[string]domain.AccountType, len(roles))
	for _, role := range roles {
		acc, err := s.directory.Resolve(ctx, tenantID, companyID, role, actor)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s account: %w", role, err)
		}
		resolved[role] = acc
		accountTypes[acc.AccountID] = acc.AccountType
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()
	total := req.Subtotal.Sub(req.Discount).Add(req.Tax)

	audit := domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor}
	newLine := func(accountID string, debit, credit decimal.Decimal, memo string) domain.JournalLine {
		return domain.JournalLine{
			LineID:      uuid.NewString(),
			EntryID:     entryID,
			AccountID:   accountID,
			Debit:       debit,
			Credit:      credit,
			Memo:        memo,
			AuditFields: audit,
		}
	}

	lines := []domain.JournalLine{
		newLine(resolved[domain.RoleCash].AccountID, total, decimal.Zero, "Cash received"),
		newLine(resolved[domain.RoleRevenue].AccountID, decimal.Zero, req.Subtotal, "Sale revenue"),
	}
	if req.Discount.IsPositive() {
		lines = append(lines, newLine(resolved[domain.RoleSalesDiscounts].AccountID, req.Discount, decimal.Zero, "Discount given"))
	}
	if req.Tax.IsPositive() {
		lines = append(lines, newLine(resolved[domain.RoleTaxPayable].AccountID, decimal.Zero, req.Tax, "Tax collected"))
	}

	movements := make([]domain.InventoryMovement, 0, len(req.CostLines))
	for _, cl := range req.CostLines {
		if cl.Quantity.LessThanOrEqual(decimal.Zero) || cl.CostPrice.IsNegative() {
			return nil, fmt.Errorf("%w: invalid cost line for product %s", apperrors.ErrValidation, cl.ProductID)
		}
		if _, err := s.inventoryRepo.FindProductByID(ctx, cl.ProductID); err != nil {
			return nil, fmt.Errorf("failed to look up product %s: %w", cl.ProductID, err)
		}
		cost := cl.CostPrice.Mul(cl.Quantity)
		lines = append(lines,
			newLine(resolved[domain.RoleCOGS].AccountID, cost, decimal.Zero, "Cost of goods sold"),
			newLine(resolved[domain.RoleInventory].AccountID, decimal.Zero, cost, "Inventory relief"),
		)
		movements = append(movements, domain.InventoryMovement{
			MovementID:    uuid.NewString(),
			ProductID:     cl.ProductID,
			QuantityDelta: cl.Quantity.Neg(),
			Reason:        "sale",
			EntryID:       entryID,
			CreatedAt:     now,
			CreatedBy:     actor,
		})
	}

	if err := accounting.CheckBalanced(lines); err != nil {
		return nil, err
	}
	balanceChanges, err := accounting.BalanceChanges(lines, accountTypes)
	if err != nil {
		return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
	}

	entry := domain.JournalEntry{
		EntryID:      entryID,
		TenantID:     tenantID,
		CompanyID:    companyID,
		EntryDate:    req.Date,
		Memo:         saleMemo(req.Memo),
		Reference:    req.Reference,
		EntryType:    "sale",
		CurrencyCode: company.BaseCurrencyCode,
		Status:       domain.Posted,
		AuditFields:  audit,
	}

	if err := s.saveWithRetry(ctx, func(saveCtx context.Context) error {
		return s.entryRepo.SaveEntry(saveCtx, entry, lines, balanceChanges, movements)
	}); err != nil {
		logger.Error("Failed to save sale entry", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save sale entry: %w", err)
	}

	logger.Info("Sale posted", slog.String("entry_id", entryID), slog.String("total", total.String()))
	entry.Lines = lines
	return &entry, nil
}

func saleMemo(memo string) string {
	if memo == "" {
		return "Cash sale"
	}
	return memo
}

// GetEntryByID retrieves an entry with its lines, scoped to a company.
func (s *journalService) GetEntryByID(ctx context.Context, tenantID, companyID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.loadScopedEntry(ctx, tenantID, companyID, entryID)
	if err != nil {
		return nil, err
	}
	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, err)
	}
	entry.Lines = lines
	return entry, nil
}

// ListEntries retrieves a paginated list of a company's entries.
func (s *journalService) ListEntries(ctx context.Context, tenantID, companyID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, tenantID, companyID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	var linesMap map[string][]domain.JournalLine
	if params.IncludeLines && len(entries) > 0 {
		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.EntryID
		}
		linesMap, err = s.entryRepo.FindLinesByEntryIDs(ctx, ids)
		if err != nil {
			// Lines are an enrichment here; return the page without them.
			logger.Warn("Failed to fetch lines for entry page", slog.String("error", err.Error()))
		}
	}

	responses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		if linesMap != nil {
			entries[i].Lines = linesMap[entries[i].EntryID]
		}
		responses[i] = dto.ToEntryResponse(&entries[i])
	}

	return &dto.ListEntriesResponse{Entries: responses, NextToken: nextToken}, nil
}

// ListLinesByAccount retrieves a paginated list of lines touching an account.
func (s *journalService) ListLinesByAccount(ctx context.Context, tenantID, companyID, accountID string, params dto.ListLinesParams) (*dto.ListLinesResponse, error) {
	if _, err := s.companySvc.GetCompanyByID(ctx, tenantID, companyID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	lines, nextToken, err := s.entryRepo.ListLinesByAccountID(ctx, tenantID, companyID, accountID, limit, params.NextToken)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve lines: %w", err)
	}

	return &dto.ListLinesResponse{Lines: dto.ToLineResponses(lines), NextToken: nextToken}, nil
}

// saveWithRetry runs a posting unit of work under the transaction timeout,
// retrying when the store reports a transient failure. Each attempt gets a
// fresh timeout; validation and state errors return immediately.
func (s *journalService) saveWithRetry(ctx context.Context, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		saveCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
		err = fn(saveCtx)
		cancel()
		if err == nil || !errors.Is(err, apperrors.ErrTransient) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

// loadScopedEntry fetches an entry and verifies it belongs to the requested
// tenant and company, reporting ErrNotFound otherwise to obscure existence.
func (s *journalService) loadScopedEntry(ctx context.Context, tenantID, companyID, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}
	if entry.TenantID != tenantID || entry.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return entry, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
