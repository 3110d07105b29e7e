package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductService manages catalog products and their supplier code
// associations
type ProductService struct {
	products         catalog.ProductRepository
	supplierProducts catalog.SupplierProductRepository
	log              *zap.Logger
}

// NewProductService creates a product service
func NewProductService(products catalog.ProductRepository, supplierProducts catalog.SupplierProductRepository, log *zap.Logger) *ProductService {
	return &ProductService{products: products, supplierProducts: supplierProducts, log: log}
}

// Create creates a product. Serial-tracked products are the ones the
// import and receiving flows operate on.
func (s *ProductService) Create(ctx context.Context, code, name, description string, serialTracked bool) (*catalog.Product, error) {
	if _, err := s.products.FindByCode(ctx, code); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	var product *catalog.Product
	var err error
	if serialTracked {
		product, err = catalog.NewSerialTrackedProduct(code, name)
	} else {
		product, err = catalog.NewProduct(code, name)
	}
	if err != nil {
		return nil, err
	}
	product.Description = description

	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	logger.WithLogger(ctx, s.log).Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code))
	return product, nil
}

// Get loads one product
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return s.products.FindByID(ctx, id)
}

// List lists products matching the filter
func (s *ProductService) List(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	return s.products.FindAll(ctx, filter)
}

// SetTemplateCode groups the product under a variant template
func (s *ProductService) SetTemplateCode(ctx context.Context, id uuid.UUID, templateCode string) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	product.SetTemplateCode(templateCode)
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// SetPurchasePrice updates the supplier cost per unit
func (s *ProductService) SetPurchasePrice(ctx context.Context, id uuid.UUID, price decimal.Decimal) (*catalog.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.SetPurchasePrice(price); err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.products.Delete(ctx, id)
}

// AssociateSupplier records the code a supplier uses for a product. An
// existing association is updated in place.
func (s *ProductService) AssociateSupplier(ctx context.Context, productID, supplierID uuid.UUID, supplierCode string) (*catalog.SupplierProduct, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	existing, err := s.supplierProducts.FindBySupplierAndProduct(ctx, supplierID, productID)
	if err == nil {
		existing.UpdateCode(supplierCode)
		if err := s.supplierProducts.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}

	sp, err := catalog.NewSupplierProduct(supplierID, productID, supplierCode)
	if err != nil {
		return nil, err
	}
	if err := s.supplierProducts.Save(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

// SupplierAssociations lists the supplier codes known for a product
func (s *ProductService) SupplierAssociations(ctx context.Context, productID uuid.UUID) ([]catalog.SupplierProduct, error) {
	return s.supplierProducts.FindByProduct(ctx, productID)
}
