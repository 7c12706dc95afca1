package pgsql

import (
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider wires every pgx-backed repository. The closeout store
// lives in a different backing store and is attached by the caller.
func NewRepositoryProvider(dbPool *pgxpool.Pool, closeout portsrepo.CloseoutStore) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	inventoryRepo := newPgxInventoryRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo, inventoryRepo)
	companyRepo := newPgxCompanyRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	templateRepo := newPgxTemplateRepository(dbPool)
	scheduleRepo := newPgxScheduleRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		JournalRepo:      journalRepo,
		CompanyRepo:      companyRepo,
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		TemplateRepo:     templateRepo,
		ScheduleRepo:     scheduleRepo,
		InventoryRepo:    inventoryRepo,
		Closeout:         closeout,
	}
}
