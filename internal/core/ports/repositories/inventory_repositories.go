package repositories

import (
	"context"

	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// InventoryRepository records the stock side effects of ledger postings.
type InventoryRepository interface {
	// FindProductByID retrieves a product.
	FindProductByID(ctx context.Context, productID string) (*domain.Product, error)

	// SaveProduct persists a new product.
	SaveProduct(ctx context.Context, product domain.Product) error

	// RecordMovementInTx inserts a movement and adjusts the product's
	// quantity on hand within the caller's transaction, so the movement and
	// the journal entry that caused it commit or roll back together.
	RecordMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.InventoryMovement) error
}
