package warehouse

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// TransferRepository persists incoming transfers with their lines
type TransferRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transfer, error)
	FindByReference(ctx context.Context, reference string) (*Transfer, error)
	FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[Transfer], error)
	Save(ctx context.Context, transfer *Transfer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
