package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// SupplierService manages suppliers and their contact hierarchy
type SupplierService struct {
	suppliers partner.SupplierRepository
	log       *zap.Logger
}

// NewSupplierService creates a supplier service
func NewSupplierService(suppliers partner.SupplierRepository, log *zap.Logger) *SupplierService {
	return &SupplierService{suppliers: suppliers, log: log}
}

// Create creates a top-level supplier
func (s *SupplierService) Create(ctx context.Context, code, name, email, phone string) (*partner.Supplier, error) {
	if _, err := s.suppliers.FindByCode(ctx, code); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if err != shared.ErrNotFound {
		return nil, err
	}

	supplier, err := partner.NewSupplier(code, name)
	if err != nil {
		return nil, err
	}
	if email != "" || phone != "" {
		if err := supplier.SetContactInfo(email, phone); err != nil {
			return nil, err
		}
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.log).Info("supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("code", supplier.Code))
	return supplier, nil
}

// CreateContact creates a contact entity under a parent supplier
func (s *SupplierService) CreateContact(ctx context.Context, parentID uuid.UUID, code, name string) (*partner.Supplier, error) {
	parent, err := s.suppliers.FindByID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	contact, err := partner.NewContact(parent, code, name)
	if err != nil {
		return nil, err
	}
	if err := s.suppliers.Save(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Get loads one supplier
func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	return s.suppliers.FindByID(ctx, id)
}

// Group returns the supplier's full group: the parent company first,
// then every contact under it.
func (s *SupplierService) Group(ctx context.Context, id uuid.UUID) ([]partner.Supplier, error) {
	return s.suppliers.FindGroup(ctx, id)
}

// List lists suppliers matching the filter
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) ([]partner.Supplier, error) {
	return s.suppliers.FindAll(ctx, filter)
}

// Update renames a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, name string) (*partner.Supplier, error) {
	supplier, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.Update(name); err != nil {
		return nil, err
	}
	if err := s.suppliers.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Delete removes a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.suppliers.Delete(ctx, id)
}
