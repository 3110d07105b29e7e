package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"gorm.io/gorm"
)

// GormImportConfigRepository implements ImportConfigRepository using GORM
type GormImportConfigRepository struct {
	db *gorm.DB
}

// NewGormImportConfigRepository creates a new GormImportConfigRepository
func NewGormImportConfigRepository(db *gorm.DB) *GormImportConfigRepository {
	return &GormImportConfigRepository{db: db}
}

// FindByID loads a configuration with its mappings and rules
func (r *GormImportConfigRepository) FindByID(ctx context.Context, id uuid.UUID) (*mapping.ImportConfig, error) {
	var config mapping.ImportConfig
	err := r.db.WithContext(ctx).
		Preload("Mappings", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&config, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &config, nil
}

// FindBySupplier finds all configurations for a supplier
func (r *GormImportConfigRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]mapping.ImportConfig, error) {
	var configs []mapping.ImportConfig
	err := r.db.WithContext(ctx).
		Preload("Mappings", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Rules", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("supplier_id = ?", supplierID).
		Order("created_at").
		Find(&configs).Error
	if err != nil {
		return nil, err
	}
	return configs, nil
}

// FindAll finds all configurations matching the filter
func (r *GormImportConfigRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[mapping.ImportConfig], error) {
	query := r.db.WithContext(ctx).Model(&mapping.ImportConfig{})
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+filter.Search+"%")
	}
	return paginate[mapping.ImportConfig](query, filter)
}

// Save persists a configuration together with its owned mappings and
// rules. Mappings removed from the aggregate are removed from storage,
// so a header re-derive fully replaces the old set.
func (r *GormImportConfigRepository) Save(ctx context.Context, config *mapping.ImportConfig) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keepIDs := make([]uuid.UUID, 0, len(config.Mappings))
		for i := range config.Mappings {
			keepIDs = append(keepIDs, config.Mappings[i].ID)
		}
		del := tx.Where("config_id = ?", config.ID)
		if len(keepIDs) > 0 {
			del = del.Where("id NOT IN ?", keepIDs)
		}
		if err := del.Delete(&mapping.ColumnMapping{}).Error; err != nil {
			return err
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(config).Error
	})
}

// Delete deletes a configuration and its owned mappings and rules
func (r *GormImportConfigRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("config_id = ?", id).Delete(&mapping.ColumnMapping{}).Error; err != nil {
			return err
		}
		if err := tx.Where("config_id = ?", id).Delete(&mapping.CombinationRule{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&mapping.ImportConfig{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormCombinationRuleRepository implements CombinationRuleRepository using GORM
type GormCombinationRuleRepository struct {
	db *gorm.DB
}

// NewGormCombinationRuleRepository creates a new GormCombinationRuleRepository
func NewGormCombinationRuleRepository(db *gorm.DB) *GormCombinationRuleRepository {
	return &GormCombinationRuleRepository{db: db}
}

// FindByConfig returns a configuration's rules in evaluation order
func (r *GormCombinationRuleRepository) FindByConfig(ctx context.Context, configID uuid.UUID) ([]mapping.CombinationRule, error) {
	var rules []mapping.CombinationRule
	err := r.db.WithContext(ctx).
		Where("config_id = ?", configID).
		Order("position").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

// Save creates or updates a rule
func (r *GormCombinationRuleRepository) Save(ctx context.Context, rule *mapping.CombinationRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// Delete deletes a rule
func (r *GormCombinationRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&mapping.CombinationRule{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormUnmatchedModelRepository implements UnmatchedModelRepository using GORM
type GormUnmatchedModelRepository struct {
	db *gorm.DB
}

// NewGormUnmatchedModelRepository creates a new GormUnmatchedModelRepository
func NewGormUnmatchedModelRepository(db *gorm.DB) *GormUnmatchedModelRepository {
	return &GormUnmatchedModelRepository{db: db}
}

// FindByID finds an entry by its ID
func (r *GormUnmatchedModelRepository) FindByID(ctx context.Context, id uuid.UUID) (*mapping.UnmatchedModelEntry, error) {
	var entry mapping.UnmatchedModelEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindBySupplierAndModel finds an entry by its natural key, matching the
// model number case-insensitively.
func (r *GormUnmatchedModelRepository) FindBySupplierAndModel(ctx context.Context, supplierID uuid.UUID, modelNoNormalized string) (*mapping.UnmatchedModelEntry, error) {
	var entry mapping.UnmatchedModelEntry
	err := r.db.WithContext(ctx).
		Where("supplier_id = ? AND model_no_normalized = ?", supplierID, modelNoNormalized).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindBySuppliersAndModel finds the model's entries across a supplier
// group
func (r *GormUnmatchedModelRepository) FindBySuppliersAndModel(ctx context.Context, supplierIDs []uuid.UUID, modelNoNormalized string) ([]mapping.UnmatchedModelEntry, error) {
	if len(supplierIDs) == 0 {
		return nil, nil
	}
	var entries []mapping.UnmatchedModelEntry
	err := r.db.WithContext(ctx).
		Where("supplier_id IN ? AND model_no_normalized = ?", supplierIDs, modelNoNormalized).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll finds all entries matching the filter
func (r *GormUnmatchedModelRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[mapping.UnmatchedModelEntry], error) {
	query := r.db.WithContext(ctx).Model(&mapping.UnmatchedModelEntry{})
	if supplierID, ok := filter.Filters["supplier_id"].(uuid.UUID); ok && supplierID != uuid.Nil {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if filter.Search != "" {
		query = query.Where("model_no_normalized LIKE ?", "%"+mapping.NormalizeModelNo(filter.Search)+"%")
	}
	return paginate[mapping.UnmatchedModelEntry](query, filter)
}

// Save creates or updates an entry
func (r *GormUnmatchedModelRepository) Save(ctx context.Context, entry *mapping.UnmatchedModelEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// Delete deletes an entry
func (r *GormUnmatchedModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&mapping.UnmatchedModelEntry{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
