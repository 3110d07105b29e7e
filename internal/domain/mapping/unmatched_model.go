package mapping

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// UnmatchedModelEntry records a supplier/model combination no resolution
// step could place, together with the raw rows that hit it. Linking the
// entry to a product later replays those rows through the normal import
// path.
type UnmatchedModelEntry struct {
	shared.BaseAggregateRoot
	SupplierID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_unmatched_supplier_model"`
	ModelNo    string    `gorm:"type:varchar(200);not null"`
	// ModelNoNormalized backs case-insensitive lookups and carries the
	// per-supplier uniqueness constraint
	ModelNoNormalized string `gorm:"type:varchar(200);not null;uniqueIndex:idx_unmatched_supplier_model"`
	ProductCode       string `gorm:"type:varchar(200)"`
	// ProductID is set when an operator manually resolves the model.
	// Future imports of the same model pick it up without a rule.
	ProductID *uuid.UUID `gorm:"type:uuid"`
	// RawData is a JSON object keyed by row identifier so re-imports of
	// the same file overwrite instead of duplicating.
	RawData string `gorm:"type:text"`
	Count   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (UnmatchedModelEntry) TableName() string {
	return "import_unmatched_models"
}

// NewUnmatchedModelEntry creates an empty registry entry
func NewUnmatchedModelEntry(supplierID uuid.UUID, modelNo, productCode string) (*UnmatchedModelEntry, error) {
	modelNo = strings.TrimSpace(modelNo)
	productCode = strings.TrimSpace(productCode)
	if modelNo == "" && productCode == "" {
		return nil, shared.NewDomainError("EMPTY_UNMATCHED_ENTRY", "An unmatched entry needs a model number or a product code")
	}
	if modelNo == "" {
		modelNo = productCode
	}

	return &UnmatchedModelEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		ModelNo:           modelNo,
		ModelNoNormalized: NormalizeModelNo(modelNo),
		ProductCode:       productCode,
	}, nil
}

// AssignProduct records the operator's manual resolution
func (e *UnmatchedModelEntry) AssignProduct(productID *uuid.UUID) {
	e.ProductID = productID
	e.Touch()
}

// NormalizeModelNo lower-cases and trims a model number for lookup
func NormalizeModelNo(modelNo string) string {
	return strings.ToLower(strings.TrimSpace(modelNo))
}

// MergeRow stores one raw row under its identifier. Rows carrying a
// serial number key by it; rows without one fall back to the product
// code, collapsing codes seen many times into a single slot. The count
// always equals the number of distinct stored rows.
func (e *UnmatchedModelEntry) MergeRow(serial string, row map[string]string) error {
	serial = strings.TrimSpace(serial)
	key := serial
	if key == "" {
		key = e.ProductCode
	}
	if key == "" {
		key = e.ModelNo
	}

	stored := e.rawRows()
	stored[key] = row
	data, err := json.Marshal(stored)
	if err != nil {
		return shared.NewDomainError("RAW_DATA_ENCODE", "Could not encode raw row data")
	}
	e.RawData = string(data)
	e.Count = len(stored)
	e.Touch()
	return nil
}

// Rows returns the stored raw rows keyed by row identifier
func (e *UnmatchedModelEntry) Rows() map[string]map[string]string {
	return e.rawRows()
}

func (e *UnmatchedModelEntry) rawRows() map[string]map[string]string {
	rows := make(map[string]map[string]string)
	if e.RawData == "" {
		return rows
	}
	if err := json.Unmarshal([]byte(e.RawData), &rows); err != nil {
		return make(map[string]map[string]string)
	}
	return rows
}
