package repositories

// RepositoryProvider bundles every repository the service container needs.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryWithTx
	JournalRepo      JournalRepositoryWithTx
	CompanyRepo      CompanyRepositoryFacade
	CurrencyRepo     CurrencyRepository
	ExchangeRateRepo ExchangeRateRepository
	TemplateRepo     TemplateRepositoryFacade
	ScheduleRepo     ScheduleRepositoryFacade
	InventoryRepo    InventoryRepository
	Closeout         CloseoutStore
}
