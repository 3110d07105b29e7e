package productinfo

import (
	"strings"

	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
)

// RowValues is one supplier file row after column mapping: typed slots
// for the identifying attributes, the remaining known attributes keyed by
// field, and custom extension values keyed by their synthetic names.
type RowValues struct {
	SerialNumber        string
	ModelNo             string
	SupplierProductCode string
	Attrs               map[mapping.Field]string
	Custom              map[string]string
}

// NewRowValues returns an empty row
func NewRowValues() *RowValues {
	return &RowValues{
		Attrs:  make(map[mapping.Field]string),
		Custom: make(map[string]string),
	}
}

// Set stores one mapped cell value. Identifying attributes and the
// supplier product code land in their typed slots; everything else goes
// into the attribute map. Values are trimmed and empty values dropped.
func (r *RowValues) Set(field mapping.Field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	switch field {
	case mapping.FieldSerialNumber:
		r.SerialNumber = value
	case mapping.FieldModelNo:
		r.ModelNo = value
	case mapping.FieldSupplierProductCode:
		r.SupplierProductCode = value
	default:
		r.Attrs[field] = value
	}
}

// SetCustom stores one custom extension value under its synthetic name
func (r *RowValues) SetCustom(name, value string) {
	value = strings.TrimSpace(value)
	if name == "" || value == "" {
		return
	}
	r.Custom[name] = value
}

// Get returns the value for a known field, typed slots included
func (r *RowValues) Get(field mapping.Field) string {
	switch field {
	case mapping.FieldSerialNumber:
		return r.SerialNumber
	case mapping.FieldModelNo:
		return r.ModelNo
	case mapping.FieldSupplierProductCode:
		return r.SupplierProductCode
	default:
		return r.Attrs[field]
	}
}

// EffectiveCode is the code used for catalog lookups: the supplier
// product code when present, else the model number.
func (r *RowValues) EffectiveCode() string {
	if r.SupplierProductCode != "" {
		return r.SupplierProductCode
	}
	return r.ModelNo
}

// IsEmpty reports whether the row carries no values at all
func (r *RowValues) IsEmpty() bool {
	return r.SerialNumber == "" && r.ModelNo == "" && r.SupplierProductCode == "" &&
		len(r.Attrs) == 0 && len(r.Custom) == 0
}

// HasIdentity reports whether the row can be keyed: it needs a serial
// number, or at least a model or code to aggregate under.
func (r *RowValues) HasIdentity() bool {
	return r.SerialNumber != "" || r.ModelNo != "" || r.SupplierProductCode != ""
}

// Raw flattens the row back into a field-name keyed map, the shape the
// unmatched registry stores.
func (r *RowValues) Raw() map[string]string {
	raw := make(map[string]string, len(r.Attrs)+len(r.Custom)+3)
	if r.SerialNumber != "" {
		raw[string(mapping.FieldSerialNumber)] = r.SerialNumber
	}
	if r.ModelNo != "" {
		raw[string(mapping.FieldModelNo)] = r.ModelNo
	}
	if r.SupplierProductCode != "" {
		raw[string(mapping.FieldSupplierProductCode)] = r.SupplierProductCode
	}
	for field, value := range r.Attrs {
		raw[string(field)] = value
	}
	for name, value := range r.Custom {
		raw[name] = value
	}
	return raw
}

// RowValuesFromRaw rebuilds a row from its flattened form. Keys that are
// not known fields are treated as custom extension values.
func RowValuesFromRaw(raw map[string]string) *RowValues {
	row := NewRowValues()
	for key, value := range raw {
		field := mapping.Field(key)
		if field.IsKnown() {
			row.Set(field, value)
		} else {
			row.SetCustom(key, value)
		}
	}
	return row
}
