package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByCode finds a product by its exact code
	FindByCode(ctx context.Context, code string) (*Product, error)

	// SearchByCodeForSuppliers searches for products associated with any of
	// the given suppliers whose own code or supplier-specific code matches
	// the query exactly or by case-insensitive containment. The caller is
	// responsible for interpreting candidate counts: exactly one match
	// resolves, more than one is ambiguous.
	SearchByCodeForSuppliers(ctx context.Context, supplierIDs []uuid.UUID, code string) ([]Product, error)

	// FindByTemplateCode finds all variants sharing a template code,
	// used as a fallback when a variant-level lookup misses
	FindByTemplateCode(ctx context.Context, templateCode string) ([]Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error
}

// SupplierProductRepository defines persistence for supplier/product code
// associations
type SupplierProductRepository interface {
	// FindBySupplierAndProduct finds the association between a supplier and
	// a product, if any
	FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*SupplierProduct, error)

	// FindByProduct finds all supplier associations for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]SupplierProduct, error)

	// ExistsForSuppliers reports whether the product is associated with any
	// of the given suppliers
	ExistsForSuppliers(ctx context.Context, productID uuid.UUID, supplierIDs []uuid.UUID) (bool, error)

	// Save creates or updates an association
	Save(ctx context.Context, sp *SupplierProduct) error

	// Delete deletes an association
	Delete(ctx context.Context, id uuid.UUID) error
}
