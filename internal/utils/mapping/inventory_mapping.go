package mapping

import (
	"github.com/closepilot/ledgercore/internal/core/domain"
	"github.com/closepilot/ledgercore/internal/models"
)

// ToModelProduct converts a domain Product to its table row.
func ToModelProduct(d domain.Product) models.Product {
	return models.Product{
		ProductID:      d.ProductID,
		TenantID:       d.TenantID,
		CompanyID:      d.CompanyID,
		SKU:            d.SKU,
		Name:           d.Name,
		QuantityOnHand: d.QuantityOnHand,
		CostPrice:      d.CostPrice,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainProduct converts a model Product to domain.
func ToDomainProduct(m models.Product) domain.Product {
	return domain.Product{
		ProductID:      m.ProductID,
		TenantID:       m.TenantID,
		CompanyID:      m.CompanyID,
		SKU:            m.SKU,
		Name:           m.Name,
		QuantityOnHand: m.QuantityOnHand,
		CostPrice:      m.CostPrice,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelMovement converts a domain InventoryMovement to its table row.
func ToModelMovement(d domain.InventoryMovement) models.InventoryMovement {
	m := models.InventoryMovement{
		MovementID:    d.MovementID,
		ProductID:     d.ProductID,
		QuantityDelta: d.QuantityDelta,
		Reason:        d.Reason,
		CreatedAt:     d.CreatedAt,
		CreatedBy:     d.CreatedBy,
	}
	if d.EntryID != "" {
		entryID := d.EntryID
		m.EntryID = &entryID
	}
	return m
}
