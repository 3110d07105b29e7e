package catalog

import (
	"strings"
	"time"

	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TrackingType represents how individual units of a product are tracked
type TrackingType string

const (
	TrackingNone   TrackingType = "none"
	TrackingSerial TrackingType = "serial"
)

// Product represents a catalog entry. Code is the internal default code
// that supplier model numbers are resolved against.
type Product struct {
	shared.BaseAggregateRoot
	Code        string       `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string       `gorm:"type:varchar(200);not null"`
	Description string       `gorm:"type:text"`
	Tracking    TrackingType `gorm:"type:varchar(20);not null;default:'none'"`
	// TemplateCode groups variants of the same product template. Variant
	// bookkeeping is frequently imprecise relative to what was physically
	// imported, so the report generator falls back to template-level
	// matching when the variant does not line up.
	TemplateCode string `gorm:"type:varchar(50);index"`
	// PurchasePrice is the supplier cost per unit
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(code, name string) (*Product, error) {
	if err := validateProductCode(code); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Tracking:          TrackingNone,
		TemplateCode:      strings.ToUpper(code),
		PurchasePrice:     decimal.Zero,
	}, nil
}

// NewSerialTrackedProduct creates a product whose units carry serial numbers
func NewSerialTrackedProduct(code, name string) (*Product, error) {
	product, err := NewProduct(code, name)
	if err != nil {
		return nil, err
	}
	product.Tracking = TrackingSerial
	return product, nil
}

// SetTemplateCode assigns the product to a variant template
func (p *Product) SetTemplateCode(code string) {
	p.TemplateCode = strings.ToUpper(code)
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetPurchasePrice updates the supplier cost per unit
func (p *Product) SetPurchasePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Purchase price cannot be negative")
	}
	p.PurchasePrice = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// IsSerialTracked returns true if units of this product carry serial numbers
func (p *Product) IsSerialTracked() bool {
	return p.Tracking == TrackingSerial
}

func validateProductCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Product code cannot exceed 50 characters")
	}
	return nil
}
