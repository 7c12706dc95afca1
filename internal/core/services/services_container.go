package services

import (
	"time"

	"github.com/shopspring/decimal"

	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/closepilot/ledgercore/internal/core/ports/services"
)

// ContainerConfig carries the tunables the services need from configuration.
type ContainerConfig struct {
	BaseCurrency     string
	StaticRates      map[string]decimal.Decimal
	PostingTxTimeout time.Duration
	BatchItemTimeout time.Duration
}

// NewServiceContainer wires every service against the repository provider.
// Wiring order matters: the journal service reads period state straight from
// the closeout store, and the period service posts through the journal
// service, which keeps the dependency graph acyclic.
func NewServiceContainer(repos portsrepo.RepositoryProvider, cfg ContainerConfig) *portssvc.ServiceContainer {
	companySvc := NewCompanyService(repos.CompanyRepo, repos.CurrencyRepo)
	directory := NewAccountDirectory(repos.AccountRepo, companySvc)
	rates := NewRateService(repos.ExchangeRateRepo, cfg.BaseCurrency, cfg.StaticRates)

	journalSvc := NewJournalService(repos.JournalRepo, repos.InventoryRepo, directory, companySvc, repos.Closeout, cfg.PostingTxTimeout)
	periodSvc := NewPeriodService(repos.Closeout, journalSvc, companySvc)
	recurringSvc := NewRecurringService(repos.TemplateRepo, journalSvc, directory, companySvc, repos.Closeout, cfg.BatchItemTimeout)
	fxSvc := NewFxService(repos.AccountRepo, rates, journalSvc, directory, companySvc, repos.Closeout)
	revenueSvc := NewRevenueService(repos.ScheduleRepo, journalSvc, directory, companySvc, repos.Closeout)
	runSvc := NewRunLedgerService(repos.Closeout, companySvc)
	consistencySvc := NewConsistencyService(repos.AccountRepo, repos.JournalRepo, repos.Closeout, companySvc)

	return &portssvc.ServiceContainer{
		Company:     companySvc,
		Directory:   directory,
		Journal:     journalSvc,
		Period:      periodSvc,
		Recurring:   recurringSvc,
		Fx:          fxSvc,
		Revenue:     revenueSvc,
		Runs:        runSvc,
		Consistency: consistencySvc,
		Rates:       rates,
	}
}
