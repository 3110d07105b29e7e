package productinfo

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// Repository persists incoming product info records
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*IncomingProductInfo, error)
	// FindBySupplierAndSerial looks up by the natural key
	FindBySupplierAndSerial(ctx context.Context, supplierID uuid.UUID, serialNumber string) (*IncomingProductInfo, error)
	// FindByProductAndSerial matches a receipt line against an announced
	// unit regardless of state, so re-validation can recognize units it
	// already received. templateProductIDs widens the product check to
	// other variants of the same template, or is empty.
	FindByProductAndSerial(ctx context.Context, productID uuid.UUID, serialNumber string, templateProductIDs []uuid.UUID) (*IncomingProductInfo, error)
	FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (shared.Paginated[IncomingProductInfo], error)
	FindByTransfer(ctx context.Context, transferID uuid.UUID) ([]IncomingProductInfo, error)
	Save(ctx context.Context, info *IncomingProductInfo) error
	// SaveBatch upserts one import chunk in a single transaction
	SaveBatch(ctx context.Context, infos []*IncomingProductInfo) error
	Delete(ctx context.Context, id uuid.UUID) error
}
