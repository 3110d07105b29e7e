package productinfo

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// State tracks whether a unit has physically arrived
type State string

const (
	StatePending  State = "pending"
	StateReceived State = "received"
)

// IncomingProductInfo is one serial-numbered unit announced by a
// supplier. The natural key is (supplier, serial number): re-importing a
// file updates records in place instead of duplicating them.
type IncomingProductInfo struct {
	shared.BaseAggregateRoot
	SupplierID          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_incoming_supplier_serial"`
	SerialNumber        string     `gorm:"type:varchar(200);not null;uniqueIndex:idx_incoming_supplier_serial"`
	ProductID           *uuid.UUID `gorm:"type:uuid;index"`
	ModelNo             string     `gorm:"type:varchar(200);index"`
	SupplierProductCode string     `gorm:"type:varchar(200)"`
	State               State      `gorm:"type:varchar(20);not null;default:'pending';index"`

	MAC1          string `gorm:"type:varchar(100)"`
	MAC2          string `gorm:"type:varchar(100)"`
	IMEI          string `gorm:"type:varchar(100)"`
	AppEUI        string `gorm:"type:varchar(100)"`
	AppKey        string `gorm:"type:varchar(200)"`
	AppKeyMode    string `gorm:"type:varchar(50)"`
	PN            string `gorm:"type:varchar(100)"`
	DevEUI        string `gorm:"type:varchar(100)"`
	RootPassword  string `gorm:"type:varchar(200)"`
	AdminPassword string `gorm:"type:varchar(200)"`
	WiFiPassword  string `gorm:"type:varchar(200)"`
	WiFiSSID      string `gorm:"type:varchar(200)"`

	// CustomValues stores the per-configuration extension values as JSON
	CustomValues string `gorm:"type:text"`

	// TransferID links the unit to the receipt that brought it in
	TransferID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (IncomingProductInfo) TableName() string {
	return "incoming_product_infos"
}

// NewIncomingProductInfo creates a pending unit for a supplier
func NewIncomingProductInfo(supplierID uuid.UUID, serialNumber string) (*IncomingProductInfo, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, shared.NewDomainError("MISSING_SERIAL", "Serial number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_SUPPLIER", "Incoming product info must belong to a supplier")
	}

	return &IncomingProductInfo{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SupplierID:        supplierID,
		SerialNumber:      serialNumber,
		State:             StatePending,
	}, nil
}

// NewImportedProductInfo creates a unit that is already on hand. Bulk
// file imports describe physical inventory, so records they create start
// out received rather than pending.
func NewImportedProductInfo(supplierID uuid.UUID, serialNumber string) (*IncomingProductInfo, error) {
	info, err := NewIncomingProductInfo(supplierID, serialNumber)
	if err != nil {
		return nil, err
	}
	info.State = StateReceived
	return info, nil
}

// ApplyValues copies a mapped row onto the record. Already-received units
// keep their state; only attribute values move. Empty incoming values
// never erase stored ones.
func (p *IncomingProductInfo) ApplyValues(row *RowValues) {
	if row.ModelNo != "" {
		p.ModelNo = row.ModelNo
	}
	if row.SupplierProductCode != "" {
		p.SupplierProductCode = row.SupplierProductCode
	}

	set := func(target *string, field mapping.Field) {
		if v := row.Attrs[field]; v != "" {
			*target = v
		}
	}
	set(&p.MAC1, mapping.FieldMAC1)
	set(&p.MAC2, mapping.FieldMAC2)
	set(&p.IMEI, mapping.FieldIMEI)
	set(&p.AppEUI, mapping.FieldAppEUI)
	set(&p.AppKey, mapping.FieldAppKey)
	set(&p.AppKeyMode, mapping.FieldAppKeyMode)
	set(&p.PN, mapping.FieldPN)
	set(&p.DevEUI, mapping.FieldDevEUI)
	set(&p.RootPassword, mapping.FieldRootPassword)
	set(&p.AdminPassword, mapping.FieldAdminPassword)
	set(&p.WiFiPassword, mapping.FieldWiFiPassword)
	set(&p.WiFiSSID, mapping.FieldWiFiSSID)

	if len(row.Custom) > 0 {
		merged := p.customValueMap()
		for name, value := range row.Custom {
			merged[name] = value
		}
		if data, err := json.Marshal(merged); err == nil {
			p.CustomValues = string(data)
		}
	}
	p.Touch()
}

// AssignProduct links or clears the resolved catalog product
func (p *IncomingProductInfo) AssignProduct(productID *uuid.UUID) {
	p.ProductID = productID
	p.Touch()
}

// MarkReceived flips the unit to received and records the transfer that
// brought it in. Marking an already-received unit again is a no-op, so
// re-validating a receipt cannot double count. Returns true when the
// state changed.
func (p *IncomingProductInfo) MarkReceived(transferID uuid.UUID) bool {
	if p.State == StateReceived {
		return false
	}
	p.State = StateReceived
	p.TransferID = &transferID
	p.Touch()
	return true
}

// IsPending reports whether the unit has not arrived yet
func (p *IncomingProductInfo) IsPending() bool {
	return p.State == StatePending
}

// CustomValue returns one extension value by its synthetic field name
func (p *IncomingProductInfo) CustomValue(name string) string {
	return p.customValueMap()[name]
}

// CustomValueMap returns all extension values
func (p *IncomingProductInfo) CustomValueMap() map[string]string {
	return p.customValueMap()
}

func (p *IncomingProductInfo) customValueMap() map[string]string {
	values := make(map[string]string)
	if p.CustomValues == "" {
		return values
	}
	if err := json.Unmarshal([]byte(p.CustomValues), &values); err != nil {
		return make(map[string]string)
	}
	return values
}

// AttrValue returns the stored value for a known field
func (p *IncomingProductInfo) AttrValue(field mapping.Field) string {
	switch field {
	case mapping.FieldSerialNumber:
		return p.SerialNumber
	case mapping.FieldModelNo:
		return p.ModelNo
	case mapping.FieldSupplierProductCode:
		return p.SupplierProductCode
	case mapping.FieldMAC1:
		return p.MAC1
	case mapping.FieldMAC2:
		return p.MAC2
	case mapping.FieldIMEI:
		return p.IMEI
	case mapping.FieldAppEUI:
		return p.AppEUI
	case mapping.FieldAppKey:
		return p.AppKey
	case mapping.FieldAppKeyMode:
		return p.AppKeyMode
	case mapping.FieldPN:
		return p.PN
	case mapping.FieldDevEUI:
		return p.DevEUI
	case mapping.FieldRootPassword:
		return p.RootPassword
	case mapping.FieldAdminPassword:
		return p.AdminPassword
	case mapping.FieldWiFiPassword:
		return p.WiFiPassword
	case mapping.FieldWiFiSSID:
		return p.WiFiSSID
	default:
		return ""
	}
}
