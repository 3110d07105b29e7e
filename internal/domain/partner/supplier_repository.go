package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	// FindByID finds a supplier by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByCode finds a supplier by its code
	FindByCode(ctx context.Context, code string) (*Supplier, error)

	// FindGroup resolves the supplier group for a supplier: the supplier's
	// parent company (or the supplier itself when it has no parent) plus
	// all direct contacts under that parent. Product and supplier-code
	// lookups during import are scoped to this group.
	FindGroup(ctx context.Context, id uuid.UUID) ([]Supplier, error)

	// FindAll finds all suppliers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, error)

	// Save creates or updates a supplier
	Save(ctx context.Context, supplier *Supplier) error

	// Delete deletes a supplier
	Delete(ctx context.Context, id uuid.UUID) error
}

// GroupIDs extracts the IDs from a supplier group
func GroupIDs(group []Supplier) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(group))
	for i := range group {
		ids = append(ids, group[i].ID)
	}
	return ids
}
