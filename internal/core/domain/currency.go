package domain

// Currency represents a currency the ledger can denominate accounts in.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217, e.g. "USD"
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"`
	AuditFields
}
