package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/domain/warehouse"
	"gorm.io/gorm"
)

// GormTransferRepository implements TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID loads a transfer with its lines
func (r *GormTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*warehouse.Transfer, error) {
	var transfer warehouse.Transfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&transfer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindByReference loads a transfer by its reference
func (r *GormTransferRepository) FindByReference(ctx context.Context, reference string) (*warehouse.Transfer, error) {
	var transfer warehouse.Transfer
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("reference = ?", strings.TrimSpace(reference)).
		First(&transfer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

// FindAll finds all transfers matching the filter
func (r *GormTransferRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[warehouse.Transfer], error) {
	query := r.db.WithContext(ctx).Model(&warehouse.Transfer{})
	if filter.Search != "" {
		query = query.Where("LOWER(reference) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if status, ok := filter.Filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	return paginate[warehouse.Transfer](query, filter)
}

// Save persists a transfer with its lines
func (r *GormTransferRepository) Save(ctx context.Context, transfer *warehouse.Transfer) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(transfer).Error
}

// Delete deletes a transfer and its lines
func (r *GormTransferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transfer_id = ?", id).Delete(&warehouse.TransferLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&warehouse.Transfer{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}
