package models

// Currency is the currencies table row.
type Currency struct {
	CurrencyCode string `db:"currency_code"` // Primary key, e.g. "USD"
	Symbol       string `db:"symbol"`
	Name         string `db:"name"`
	Precision    int    `db:"precision"`
	AuditFields
}
