package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductInfoRepository implements productinfo.Repository using GORM
type GormProductInfoRepository struct {
	db *gorm.DB
}

// NewGormProductInfoRepository creates a new GormProductInfoRepository
func NewGormProductInfoRepository(db *gorm.DB) *GormProductInfoRepository {
	return &GormProductInfoRepository{db: db}
}

// FindByID finds a record by its ID
func (r *GormProductInfoRepository) FindByID(ctx context.Context, id uuid.UUID) (*productinfo.IncomingProductInfo, error) {
	var info productinfo.IncomingProductInfo
	if err := r.db.WithContext(ctx).First(&info, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// FindBySupplierAndSerial looks up by the natural key
func (r *GormProductInfoRepository) FindBySupplierAndSerial(ctx context.Context, supplierID uuid.UUID, serialNumber string) (*productinfo.IncomingProductInfo, error) {
	var info productinfo.IncomingProductInfo
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND serial_number = ?", supplierID, strings.TrimSpace(serialNumber)).
		First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// FindByProductAndSerial matches a receipt line against an announced
// unit. The direct product match wins; templateProductIDs widens the
// check to sibling variants when nothing matched directly. Received
// units are matched too, so re-validation can tell them apart from
// serials that were never announced.
func (r *GormProductInfoRepository) FindByProductAndSerial(ctx context.Context, productID uuid.UUID, serialNumber string, templateProductIDs []uuid.UUID) (*productinfo.IncomingProductInfo, error) {
	serialNumber = strings.TrimSpace(serialNumber)

	var info productinfo.IncomingProductInfo
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND serial_number = ?", productID, serialNumber).
		First(&info).Error
	if err == nil {
		return &info, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if len(templateProductIDs) == 0 {
		return nil, shared.ErrNotFound
	}
	err = r.db.WithContext(ctx).
		Where("product_id IN ? AND serial_number = ?", templateProductIDs, serialNumber).
		First(&info).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &info, nil
}

// FindBySupplier finds records for a supplier
func (r *GormProductInfoRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (shared.Paginated[productinfo.IncomingProductInfo], error) {
	query := r.db.WithContext(ctx).
		Model(&productinfo.IncomingProductInfo{}).
		Where("supplier_id = ?", supplierID)
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(serial_number) LIKE ? OR LOWER(model_no) LIKE ?", pattern, pattern)
	}
	if state, ok := filter.Filters["state"].(string); ok && state != "" {
		query = query.Where("state = ?", state)
	}
	return paginate[productinfo.IncomingProductInfo](query, filter)
}

// FindByTransfer finds the records received through a transfer
func (r *GormProductInfoRepository) FindByTransfer(ctx context.Context, transferID uuid.UUID) ([]productinfo.IncomingProductInfo, error) {
	var infos []productinfo.IncomingProductInfo
	err := r.db.WithContext(ctx).
		Where("transfer_id = ?", transferID).
		Order("serial_number").
		Find(&infos).Error
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Save creates or updates a record
func (r *GormProductInfoRepository) Save(ctx context.Context, info *productinfo.IncomingProductInfo) error {
	return r.db.WithContext(ctx).Save(info).Error
}

// SaveBatch upserts one import chunk in a single transaction
func (r *GormProductInfoRepository) SaveBatch(ctx context.Context, infos []*productinfo.IncomingProductInfo) error {
	if len(infos) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, info := range infos {
			if err := tx.Save(info).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete deletes a record
func (r *GormProductInfoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&productinfo.IncomingProductInfo{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
