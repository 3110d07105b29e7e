package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// SupplierProduct associates a catalog product with a supplier and the code
// that supplier uses for it. One product can carry different codes per
// supplier; the resolver searches these alongside the product's own code.
type SupplierProduct struct {
	shared.BaseEntity
	SupplierID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_product,priority:1"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_product,priority:2"`
	ProductCode string    `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (SupplierProduct) TableName() string {
	return "supplier_products"
}

// NewSupplierProduct creates a supplier/product code association
func NewSupplierProduct(supplierID, productID uuid.UUID, productCode string) (*SupplierProduct, error) {
	if supplierID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Supplier and product are required")
	}

	return &SupplierProduct{
		BaseEntity:  shared.NewBaseEntity(),
		SupplierID:  supplierID,
		ProductID:   productID,
		ProductCode: strings.TrimSpace(productCode),
	}, nil
}

// UpdateCode updates the supplier-specific product code
func (sp *SupplierProduct) UpdateCode(code string) {
	sp.ProductCode = strings.TrimSpace(code)
	sp.Touch()
}
