package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is the products table row.
type Product struct {
	ProductID      string          `db:"product_id"`
	TenantID       string          `db:"tenant_id"`
	CompanyID      string          `db:"company_id"`
	SKU            string          `db:"sku"`
	Name           string          `db:"name"`
	QuantityOnHand decimal.Decimal `db:"quantity_on_hand"`
	CostPrice      decimal.Decimal `db:"cost_price"`
	AuditFields
}

// InventoryMovement is the inventory_movements table row.
type InventoryMovement struct {
	MovementID    string          `db:"movement_id"`
	ProductID     string          `db:"product_id"`
	QuantityDelta decimal.Decimal `db:"quantity_delta"`
	Reason        string          `db:"reason"`
	EntryID       *string         `db:"entry_id"` // Nullable
	CreatedAt     time.Time       `db:"created_at"`
	CreatedBy     string          `db:"created_by"`
}
