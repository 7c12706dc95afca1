package services

// ServiceContainer holds instances of all the application services. This is
// the main entry point for accessing service functionality and is what the
// handlers are wired against.
type ServiceContainer struct {
	Company     CompanySvcFacade
	Directory   AccountDirectorySvcFacade
	Journal     JournalSvcFacade
	Period      PeriodSvcFacade
	Recurring   RecurringSvcFacade
	Fx          FxRevaluationSvcFacade
	Revenue     RevenueSvcFacade
	Runs        RunLedgerSvcFacade
	Consistency ConsistencySvcFacade
	Rates       RateSource
}
