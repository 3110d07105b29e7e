package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode finds a product by its exact code
func (r *GormProductRepository) FindByCode(ctx context.Context, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// SearchByCodeForSuppliers searches products by code within a supplier
// group. Only products with a seller association for one of the given
// suppliers are candidates; within those, the code matches the product's
// own code or the supplier-specific code on the association. Exact
// matches (case-insensitive) win; only when there is none does the
// search widen to containment. Callers treat more than one result as
// ambiguous.
func (r *GormProductRepository) SearchByCodeForSuppliers(ctx context.Context, supplierIDs []uuid.UUID, code string) ([]catalog.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(supplierIDs) == 0 {
		return nil, nil
	}

	exact, err := r.searchByCode(ctx, supplierIDs, strings.ToLower(code), false)
	if err != nil {
		return nil, err
	}
	if len(exact) > 0 {
		return exact, nil
	}
	return r.searchByCode(ctx, supplierIDs, "%"+strings.ToLower(code)+"%", true)
}

func (r *GormProductRepository) searchByCode(ctx context.Context, supplierIDs []uuid.UUID, pattern string, contains bool) ([]catalog.Product, error) {
	op := "="
	if contains {
		op = "LIKE"
	}

	var products []catalog.Product
	err := r.db.WithContext(ctx).
		Distinct("products.*").
		Model(&catalog.Product{}).
		Joins("JOIN supplier_products ON supplier_products.product_id = products.id AND supplier_products.supplier_id IN ?", supplierIDs).
		Where("LOWER(products.code) "+op+" ? OR LOWER(supplier_products.product_code) "+op+" ?", pattern, pattern).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// FindByTemplateCode finds all variants sharing a template code
func (r *GormProductRepository) FindByTemplateCode(ctx context.Context, templateCode string) ([]catalog.Product, error) {
	if templateCode == "" {
		return nil, nil
	}
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Where("template_code = ?", templateCode).
		Order("code").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindAll finds all products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(code) LIKE ?", pattern, pattern)
	}

	var products []catalog.Product
	if err := applyFilter(query, filter).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete deletes a product
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormSupplierProductRepository implements SupplierProductRepository using GORM
type GormSupplierProductRepository struct {
	db *gorm.DB
}

// NewGormSupplierProductRepository creates a new GormSupplierProductRepository
func NewGormSupplierProductRepository(db *gorm.DB) *GormSupplierProductRepository {
	return &GormSupplierProductRepository{db: db}
}

// FindBySupplierAndProduct finds the association between a supplier and a product
func (r *GormSupplierProductRepository) FindBySupplierAndProduct(ctx context.Context, supplierID, productID uuid.UUID) (*catalog.SupplierProduct, error) {
	var sp catalog.SupplierProduct
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND product_id = ?", supplierID, productID).
		First(&sp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// FindByProduct finds all supplier associations for a product
func (r *GormSupplierProductRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]catalog.SupplierProduct, error) {
	var associations []catalog.SupplierProduct
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Find(&associations).Error; err != nil {
		return nil, err
	}
	return associations, nil
}

// ExistsForSuppliers reports whether the product is associated with any
// of the given suppliers
func (r *GormSupplierProductRepository) ExistsForSuppliers(ctx context.Context, productID uuid.UUID, supplierIDs []uuid.UUID) (bool, error) {
	if len(supplierIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.SupplierProduct{}).
		Where("product_id = ? AND supplier_id IN ?", productID, supplierIDs).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an association
func (r *GormSupplierProductRepository) Save(ctx context.Context, sp *catalog.SupplierProduct) error {
	return r.db.WithContext(ctx).Save(sp).Error
}

// Delete deletes an association
func (r *GormSupplierProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.SupplierProduct{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
