package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LinkResult reports what linking an unmatched entry produced
type LinkResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// UnmatchedService manages the unmatched model registry: listing the
// backlog, assigning manual product overrides and replaying stored rows
// once an operator resolves an entry.
type UnmatchedService struct {
	unmatched        mapping.UnmatchedModelRepository
	products         catalog.ProductRepository
	supplierProducts catalog.SupplierProductRepository
	infos            productinfo.Repository
	log              *zap.Logger
}

// NewUnmatchedService creates an unmatched registry service
func NewUnmatchedService(
	unmatched mapping.UnmatchedModelRepository,
	products catalog.ProductRepository,
	supplierProducts catalog.SupplierProductRepository,
	infos productinfo.Repository,
	log *zap.Logger,
) *UnmatchedService {
	return &UnmatchedService{
		unmatched:        unmatched,
		products:         products,
		supplierProducts: supplierProducts,
		infos:            infos,
		log:              log,
	}
}

// List lists registry entries matching the filter
func (s *UnmatchedService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[mapping.UnmatchedModelEntry], error) {
	return s.unmatched.FindAll(ctx, filter)
}

// Get loads one registry entry
func (s *UnmatchedService) Get(ctx context.Context, id uuid.UUID) (*mapping.UnmatchedModelEntry, error) {
	return s.unmatched.FindByID(ctx, id)
}

// AssignProduct records a manual product override on an entry without
// replaying its rows. Future imports of the same model number resolve
// through the override immediately.
func (s *UnmatchedService) AssignProduct(ctx context.Context, entryID, productID uuid.UUID) error {
	entry, err := s.unmatched.FindByID(ctx, entryID)
	if err != nil {
		return err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return err
	}
	entry.AssignProduct(&productID)
	if err := s.unmatched.Save(ctx, entry); err != nil {
		return err
	}

	logger.WithLogger(ctx, s.log).Info("unmatched entry assigned to product",
		zap.String("entry_id", entryID.String()),
		zap.String("product_id", productID.String()))
	return nil
}

// LinkToProduct resolves an entry retroactively: every stored raw row is
// replayed into an incoming product record bound to the chosen product,
// the supplier/product code association is upserted, and the entry is
// deleted from the backlog.
func (s *UnmatchedService) LinkToProduct(ctx context.Context, entryID, productID uuid.UUID) (*LinkResult, error) {
	entry, err := s.unmatched.FindByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}

	result := &LinkResult{}
	for key, raw := range entry.Rows() {
		values := productinfo.RowValuesFromRaw(raw)
		serial := values.SerialNumber
		if serial == "" {
			// rows aggregated without a serial keep their map key as one
			serial = key
		}

		info, err := s.infos.FindBySupplierAndSerial(ctx, entry.SupplierID, serial)
		if err != nil {
			if err != shared.ErrNotFound {
				return nil, err
			}
			info, err = productinfo.NewImportedProductInfo(entry.SupplierID, serial)
			if err != nil {
				return nil, err
			}
			result.Created++
		} else {
			result.Updated++
		}
		info.ApplyValues(values)
		info.AssignProduct(&productID)
		if err := s.infos.Save(ctx, info); err != nil {
			return nil, err
		}
	}

	if err := s.upsertSupplierCode(ctx, entry, productID); err != nil {
		return nil, err
	}
	if err := s.unmatched.Delete(ctx, entry.ID); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.log).Info("unmatched entry linked to product",
		zap.String("entry_id", entryID.String()),
		zap.String("product_id", productID.String()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return result, nil
}

// upsertSupplierCode records the entry's code (or model number) as the
// supplier-specific product code so the catalog search resolves the
// next import directly.
func (s *UnmatchedService) upsertSupplierCode(ctx context.Context, entry *mapping.UnmatchedModelEntry, productID uuid.UUID) error {
	code := entry.ProductCode
	if code == "" {
		code = entry.ModelNo
	}

	existing, err := s.supplierProducts.FindBySupplierAndProduct(ctx, entry.SupplierID, productID)
	if err != nil {
		if err != shared.ErrNotFound {
			return err
		}
		sp, err := catalog.NewSupplierProduct(entry.SupplierID, productID, code)
		if err != nil {
			return err
		}
		return s.supplierProducts.Save(ctx, sp)
	}
	existing.UpdateCode(code)
	return s.supplierProducts.Save(ctx, existing)
}
