package receiving

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/domain/warehouse"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Result reports what validating a transfer reconciled
type Result struct {
	// Matched counts pending units flipped to received
	Matched int `json:"matched"`
	// AlreadyReceived counts serials that were received before, left untouched
	AlreadyReceived int `json:"already_received"`
	// MissingSerials lists transfer serials with no announced unit
	MissingSerials []string `json:"missing_serials,omitempty"`
}

// Service reconciles warehouse receipts against the incoming product
// records announced by supplier imports.
type Service struct {
	transfers warehouse.TransferRepository
	infos     productinfo.Repository
	products  catalog.ProductRepository
	log       *zap.Logger
}

// NewService creates a receiving service
func NewService(
	transfers warehouse.TransferRepository,
	infos productinfo.Repository,
	products catalog.ProductRepository,
	log *zap.Logger,
) *Service {
	return &Service{
		transfers: transfers,
		infos:     infos,
		products:  products,
		log:       log,
	}
}

// LineInput is one requested transfer line
type LineInput struct {
	ProductID uuid.UUID `json:"product_id"`
	LotSerial string    `json:"lot_serial"`
	Quantity  int       `json:"quantity"`
}

// CreateTransfer creates a draft transfer with the given lines
func (s *Service) CreateTransfer(ctx context.Context, reference string, supplierID uuid.UUID, lines []LineInput) (*warehouse.Transfer, error) {
	transfer, err := warehouse.NewTransfer(reference, supplierID)
	if err != nil {
		return nil, err
	}
	for _, line := range lines {
		if _, err := s.products.FindByID(ctx, line.ProductID); err != nil {
			return nil, err
		}
		if err := transfer.AddLine(line.ProductID, line.LotSerial, line.Quantity); err != nil {
			return nil, err
		}
	}
	if err := s.transfers.Save(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// GetTransfer loads one transfer with its lines
func (s *Service) GetTransfer(ctx context.Context, id uuid.UUID) (*warehouse.Transfer, error) {
	return s.transfers.FindByID(ctx, id)
}

// ListTransfers lists transfers matching the filter
func (s *Service) ListTransfers(ctx context.Context, filter shared.Filter) (shared.Paginated[warehouse.Transfer], error) {
	return s.transfers.FindAll(ctx, filter)
}

// MarkReady moves a draft transfer with lines to ready
func (s *Service) MarkReady(ctx context.Context, id uuid.UUID) (*warehouse.Transfer, error) {
	transfer, err := s.transfers.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transfer.MarkReady(); err != nil {
		return nil, err
	}
	if err := s.transfers.Save(ctx, transfer); err != nil {
		return nil, err
	}
	return transfer, nil
}

// ProcessTransfer validates a transfer: every line carrying a serial is
// matched against a pending incoming unit for the same product, variant
// template siblings tolerated, and the unit is flipped to received.
// Re-validating a transfer is a no-op for units already received.
func (s *Service) ProcessTransfer(ctx context.Context, transferID uuid.UUID) (*Result, error) {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	log := logger.WithLogger(ctx, s.log).With(
		zap.String("transfer_id", transferID.String()),
		zap.String("reference", transfer.Reference))

	result := &Result{}
	for _, line := range transfer.SerialLines() {
		info, err := s.findAnnounced(ctx, line, log)
		if err != nil {
			if err == shared.ErrNotFound {
				result.MissingSerials = append(result.MissingSerials, line.LotSerial)
				log.Warn("no announced unit for transfer serial",
					zap.String("serial_number", line.LotSerial),
					zap.String("product_id", line.ProductID.String()))
				continue
			}
			return nil, err
		}

		if !info.MarkReceived(transfer.ID) {
			result.AlreadyReceived++
			continue
		}
		if err := s.infos.Save(ctx, info); err != nil {
			return nil, err
		}
		result.Matched++
	}

	if transfer.Complete() {
		if err := s.transfers.Save(ctx, transfer); err != nil {
			return nil, err
		}
	}

	log.Info("transfer processed",
		zap.Int("matched", result.Matched),
		zap.Int("already_received", result.AlreadyReceived),
		zap.Int("missing", len(result.MissingSerials)))
	return result, nil
}

// FillResult reports what filling a transfer from pending units did
type FillResult struct {
	// AddedLines counts lines created from pending units
	AddedLines int `json:"added_lines"`
	// SkippedNoProduct lists serials of pending units without a resolved
	// product, which cannot become transfer lines
	SkippedNoProduct []string `json:"skipped_no_product,omitempty"`
}

// FillFromPending adds a line to a draft transfer for every pending
// unit of the transfer's supplier that has a resolved product and is not
// on the transfer already. Units still lacking a product are reported so
// the operator can resolve them first.
func (s *Service) FillFromPending(ctx context.Context, transferID uuid.UUID) (*FillResult, error) {
	transfer, err := s.transfers.FindByID(ctx, transferID)
	if err != nil {
		return nil, err
	}
	if transfer.IsDone() {
		return nil, shared.NewDomainError("TRANSFER_DONE", "Cannot fill a completed transfer")
	}

	onTransfer := make(map[string]bool, len(transfer.Lines))
	for _, line := range transfer.Lines {
		onTransfer[line.LotSerial] = true
	}

	result := &FillResult{}
	filter := shared.DefaultFilter()
	filter.PageSize = 1000
	filter.Filters["state"] = string(productinfo.StatePending)
	for {
		page, err := s.infos.FindBySupplier(ctx, transfer.SupplierID, filter)
		if err != nil {
			return nil, err
		}
		for i := range page.Items {
			info := &page.Items[i]
			if onTransfer[info.SerialNumber] {
				continue
			}
			if info.ProductID == nil {
				result.SkippedNoProduct = append(result.SkippedNoProduct, info.SerialNumber)
				continue
			}
			if err := transfer.AddLine(*info.ProductID, info.SerialNumber, 1); err != nil {
				return nil, err
			}
			onTransfer[info.SerialNumber] = true
			result.AddedLines++
		}
		if filter.Page*filter.PageSize >= int(page.Total) {
			break
		}
		filter.Page++
	}

	if result.AddedLines > 0 {
		if err := s.transfers.Save(ctx, transfer); err != nil {
			return nil, err
		}
	}

	logger.WithLogger(ctx, s.log).Info("transfer filled from pending units",
		zap.String("transfer_id", transferID.String()),
		zap.Int("added_lines", result.AddedLines),
		zap.Int("skipped_no_product", len(result.SkippedNoProduct)))
	return result, nil
}

// findAnnounced looks up the announced unit for a transfer line, falling
// back to the product's template siblings when the variant does not
// line up with what was imported. Units already received are returned
// too; the caller counts them instead of treating them as missing.
func (s *Service) findAnnounced(ctx context.Context, line warehouse.TransferLine, log *logger.ContextLogger) (*productinfo.IncomingProductInfo, error) {
	info, err := s.infos.FindByProductAndSerial(ctx, line.ProductID, line.LotSerial, nil)
	if err == nil {
		return info, nil
	}
	if err != shared.ErrNotFound {
		return nil, err
	}

	siblings, err := s.templateSiblings(ctx, line.ProductID)
	if err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return nil, shared.ErrNotFound
	}

	info, err = s.infos.FindByProductAndSerial(ctx, line.ProductID, line.LotSerial, siblings)
	if err != nil {
		return nil, err
	}
	log.Info("transfer serial matched through template fallback",
		zap.String("serial_number", line.LotSerial),
		zap.String("product_id", line.ProductID.String()))
	return info, nil
}

// templateSiblings returns the IDs of other variants under the same
// product template.
func (s *Service) templateSiblings(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	variants, err := s.products.FindByTemplateCode(ctx, product.TemplateCode)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(variants))
	for i := range variants {
		if variants[i].ID == productID {
			continue
		}
		ids = append(ids, variants[i].ID)
	}
	return ids, nil
}
