package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleCostLine describes one inventory item consumed by a sale.
type SaleCostLine struct {
	ProductID string          `json:"productID" binding:"required"`
	CostPrice decimal.Decimal `json:"costPrice" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
}

// PostSaleRequest turns a cash sale business event into a balanced entry:
// cash for the total, revenue for the subtotal, discount and tax legs, and a
// COGS/inventory pair per cost line, with matching stock movements.
type PostSaleRequest struct {
	Date      time.Time       `json:"date" binding:"required"`
	Reference string          `json:"reference"`
	Memo      string          `json:"memo"`
	Subtotal  decimal.Decimal `json:"subtotal" binding:"required"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	CostLines []SaleCostLine  `json:"costLines"`
}
