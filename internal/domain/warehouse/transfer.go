package warehouse

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// TransferStatus is the lifecycle state of an incoming transfer
type TransferStatus string

const (
	TransferStatusDraft TransferStatus = "draft"
	TransferStatusReady TransferStatus = "ready"
	TransferStatusDone  TransferStatus = "done"
)

// Transfer is an incoming receipt from a supplier. Validating it matches
// its serial-numbered lines against pending incoming product info.
type Transfer struct {
	shared.BaseAggregateRoot
	Reference  string         `gorm:"type:varchar(100);not null;uniqueIndex"`
	SupplierID uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status     TransferStatus `gorm:"type:varchar(20);not null;default:'draft'"`

	Lines []TransferLine `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (Transfer) TableName() string {
	return "warehouse_transfers"
}

// TransferLine is one serial-numbered unit on an incoming transfer
type TransferLine struct {
	shared.BaseEntity
	TransferID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID  uuid.UUID `gorm:"type:uuid;not null;index"`
	LotSerial  string    `gorm:"type:varchar(200)"`
	Quantity   int       `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (TransferLine) TableName() string {
	return "warehouse_transfer_lines"
}

// NewTransfer creates a draft incoming transfer
func NewTransfer(reference string, supplierID uuid.UUID) (*Transfer, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Transfer reference cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_SUPPLIER", "Transfer must name a supplier")
	}

	return &Transfer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		SupplierID:        supplierID,
		Status:            TransferStatusDraft,
	}, nil
}

// AddLine appends a serial-numbered line
func (t *Transfer) AddLine(productID uuid.UUID, lotSerial string, quantity int) error {
	if t.Status == TransferStatusDone {
		return shared.NewDomainError("TRANSFER_DONE", "Cannot add lines to a completed transfer")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError("MISSING_PRODUCT", "Transfer line must name a product")
	}
	if quantity <= 0 {
		quantity = 1
	}
	t.Lines = append(t.Lines, TransferLine{
		BaseEntity: shared.NewBaseEntity(),
		TransferID: t.ID,
		ProductID:  productID,
		LotSerial:  strings.TrimSpace(lotSerial),
		Quantity:   quantity,
	})
	t.Touch()
	return nil
}

// MarkReady moves a draft transfer to ready
func (t *Transfer) MarkReady() error {
	if t.Status == TransferStatusDone {
		return shared.NewDomainError("TRANSFER_DONE", "Transfer is already completed")
	}
	if len(t.Lines) == 0 {
		return shared.NewDomainError("EMPTY_TRANSFER", "Transfer has no lines")
	}
	t.Status = TransferStatusReady
	t.Touch()
	return nil
}

// Complete marks the transfer done. Completing a done transfer is a
// no-op so validation stays idempotent. Returns true on the first call.
func (t *Transfer) Complete() bool {
	if t.Status == TransferStatusDone {
		return false
	}
	t.Status = TransferStatusDone
	t.Touch()
	return true
}

// IsDone reports whether the transfer was completed
func (t *Transfer) IsDone() bool {
	return t.Status == TransferStatusDone
}

// SerialLines returns only the lines that carry a lot or serial number
func (t *Transfer) SerialLines() []TransferLine {
	var lines []TransferLine
	for _, line := range t.Lines {
		if line.LotSerial != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
