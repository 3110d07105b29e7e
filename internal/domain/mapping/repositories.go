package mapping

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// ImportConfigRepository persists import configurations together with
// their owned mappings and rules.
type ImportConfigRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ImportConfig, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]ImportConfig, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[ImportConfig], error)
	Save(ctx context.Context, config *ImportConfig) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CombinationRuleRepository gives the import path direct access to rules
// without loading the whole configuration.
type CombinationRuleRepository interface {
	FindByConfig(ctx context.Context, configID uuid.UUID) ([]CombinationRule, error)
	Save(ctx context.Context, rule *CombinationRule) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnmatchedModelRepository persists the unmatched-model registry
type UnmatchedModelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*UnmatchedModelEntry, error)
	FindBySupplierAndModel(ctx context.Context, supplierID uuid.UUID, modelNoNormalized string) (*UnmatchedModelEntry, error)
	// FindBySuppliersAndModel returns every entry for the model across a
	// supplier group; resolution consults sibling overrides through it.
	FindBySuppliersAndModel(ctx context.Context, supplierIDs []uuid.UUID, modelNoNormalized string) ([]UnmatchedModelEntry, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[UnmatchedModelEntry], error)
	Save(ctx context.Context, entry *UnmatchedModelEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}
