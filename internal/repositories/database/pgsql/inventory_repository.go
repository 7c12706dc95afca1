package pgsql

import (
	"context"
	"errors"

	"github.com/closepilot/ledgercore/internal/apperrors"
	"github.com/closepilot/ledgercore/internal/core/domain"
	portsrepo "github.com/closepilot/ledgercore/internal/core/ports/repositories"
	"github.com/closepilot/ledgercore/internal/models"
	"github.com/closepilot/ledgercore/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = `product_id, tenant_id, company_id, sku, name, quantity_on_hand, cost_price, created_at, created_by, last_updated_at, last_updated_by`

type PgxInventoryRepository struct {
	BaseRepository
}

// newPgxInventoryRepository creates a new repository for product stock data.
func newPgxInventoryRepository(pool *pgxpool.Pool) portsrepo.InventoryRepository {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InventoryRepository = (*PgxInventoryRepository)(nil)

// FindProductByID retrieves a product.
func (r *PgxInventoryRepository) FindProductByID(ctx context.Context, productID string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE product_id = $1;`
	var m models.Product
	err := r.Pool.QueryRow(ctx, query, productID).Scan(
		&m.ProductID,
		&m.TenantID,
		&m.CompanyID,
		&m.SKU,
		&m.Name,
		&m.QuantityOnHand,
		&m.CostPrice,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find product "+productID, err)
	}
	p := mapping.ToDomainProduct(m)
	return &p, nil
}

// SaveProduct persists a new product.
func (r *PgxInventoryRepository) SaveProduct(ctx context.Context, product domain.Product) error {
	m := mapping.ToModelProduct(product)
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ProductID,
		m.TenantID,
		m.CompanyID,
		m.SKU,
		m.Name,
		m.QuantityOnHand,
		m.CostPrice,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save product "+m.ProductID, err)
	}
	return nil
}

// RecordMovementInTx inserts a movement and adjusts the product's quantity on
// hand within the caller's transaction, so stock and ledger commit together.
func (r *PgxInventoryRepository) RecordMovementInTx(ctx context.Context, tx pgx.Tx, movement domain.InventoryMovement) error {
	m := mapping.ToModelMovement(movement)

	_, err := tx.Exec(ctx, `
		INSERT INTO inventory_movements (movement_id, product_id, quantity_delta, reason, entry_id, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, m.MovementID, m.ProductID, m.QuantityDelta, m.Reason, m.EntryID, m.CreatedAt, m.CreatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert movement "+m.MovementID, err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE products
		SET quantity_on_hand = quantity_on_hand + $2, last_updated_at = $3, last_updated_by = $4
		WHERE product_id = $1;
	`, m.ProductID, m.QuantityDelta, m.CreatedAt, m.CreatedBy)
	if err != nil {
		return apperrors.NewAppError(500, "failed to adjust stock for product "+m.ProductID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
