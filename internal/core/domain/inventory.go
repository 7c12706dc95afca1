package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the minimal stock-keeping record the ledger's sale side effects
// touch. Catalog management proper lives outside this core.
type Product struct {
	ProductID      string          `json:"productID"`
	TenantID       string          `json:"tenantID"`
	CompanyID      string          `json:"companyID"`
	SKU            string          `json:"sku"`
	Name           string          `json:"name"`
	QuantityOnHand decimal.Decimal `json:"quantityOnHand"`
	CostPrice      decimal.Decimal `json:"costPrice"`
	AuditFields
}

// InventoryMovement records one stock debit/credit side effect of a posting.
type InventoryMovement struct {
	MovementID    string          `json:"movementID"`
	ProductID     string          `json:"productID"`
	QuantityDelta decimal.Decimal `json:"quantityDelta"`
	Reason        string          `json:"reason"`
	EntryID       string          `json:"entryID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
}
