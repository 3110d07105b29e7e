package mapping

import (
	"strings"
)

// Field identifies one destination attribute on the incoming product info
// record. The set is closed: supplier columns that match none of the known
// attributes map to FieldCustom and live in a per-configuration extension
// map instead of mutating the record schema.
type Field string

const (
	FieldSerialNumber        Field = "sn"
	FieldModelNo             Field = "model_no"
	FieldSupplierProductCode Field = "supplier_product_code"
	FieldMAC1                Field = "mac1"
	FieldMAC2                Field = "mac2"
	FieldIMEI                Field = "imei"
	FieldAppEUI              Field = "app_eui"
	FieldAppKey              Field = "app_key"
	FieldAppKeyMode          Field = "app_key_mode"
	FieldPN                  Field = "pn"
	FieldDevEUI              Field = "dev_eui"
	FieldRootPassword        Field = "root_password"
	FieldAdminPassword       Field = "admin_password"
	FieldWiFiPassword        Field = "wifi_password"
	FieldWiFiSSID            Field = "wifi_ssid"

	// FieldCustom marks a mapping whose destination is a dynamically named
	// extension value rather than a known attribute.
	FieldCustom Field = "custom"
)

// fieldLabels maps each known field to its display label
var fieldLabels = map[Field]string{
	FieldSerialNumber:        "Serial Number",
	FieldModelNo:             "Model No.",
	FieldSupplierProductCode: "Supplier Product Code",
	FieldMAC1:                "MAC1",
	FieldMAC2:                "MAC2",
	FieldIMEI:                "IMEI",
	FieldAppEUI:              "AppEUI",
	FieldAppKey:              "AppKey",
	FieldAppKeyMode:          "AppKeyMode",
	FieldPN:                  "PN",
	FieldDevEUI:              "DEVEUI",
	FieldRootPassword:        "Root Password",
	FieldAdminPassword:       "Admin Password",
	FieldWiFiPassword:        "WiFi Password",
	FieldWiFiSSID:            "WiFi SSID",
}

// headerAliases maps normalized supplier column spellings to fields that an
// exact attribute-name match would miss
var headerAliases = map[string]Field{
	"appkey":      FieldAppKey,
	"appkeymode":  FieldAppKeyMode,
	"deveui":      FieldDevEUI,
	"appeui":      FieldAppEUI,
	"wifissid":    FieldWiFiSSID,
	"wifi_ssid":   FieldWiFiSSID,
	"serial":      FieldSerialNumber,
	"serialno":    FieldSerialNumber,
	"serial_no":   FieldSerialNumber,
	"modelno":     FieldModelNo,
	"model":       FieldModelNo,
	"mac_1":       FieldMAC1,
	"mac_2":       FieldMAC2,
	"wifipwd":     FieldWiFiPassword,
	"rootpwd":     FieldRootPassword,
	"adminpwd":    FieldAdminPassword,
}

// KnownFields returns all known destination fields in a stable order
func KnownFields() []Field {
	return []Field{
		FieldSerialNumber,
		FieldModelNo,
		FieldSupplierProductCode,
		FieldMAC1,
		FieldMAC2,
		FieldIMEI,
		FieldAppEUI,
		FieldAppKey,
		FieldAppKeyMode,
		FieldPN,
		FieldDevEUI,
		FieldRootPassword,
		FieldAdminPassword,
		FieldWiFiPassword,
		FieldWiFiSSID,
	}
}

// IsKnown reports whether f is one of the closed set of known fields
func (f Field) IsKnown() bool {
	_, ok := fieldLabels[f]
	return ok
}

// IsIdentifying reports whether f is one of the two identifying attributes
// that every configuration must map
func (f Field) IsIdentifying() bool {
	return f == FieldSerialNumber || f == FieldModelNo
}

// Label returns the display label for a known field, or the raw value for
// anything else
func (f Field) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// NormalizeHeader lower-cases a supplier column header and replaces spaces
// with underscores, the canonical form used for field matching
func NormalizeHeader(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}

// MatchHeader attempts to find the known destination field for a supplier
// column header. The strategies are ordered and the first hit wins:
//
//  1. exact match against a known attribute name after normalization
//  2. the alias table of common supplier spellings
//  3. substring containment in either direction
//  4. semantic special cases: "product"+"code" means the supplier product
//     code, "serial" or "sn" anywhere means the serial number
//
// Returns FieldCustom when nothing matches.
func MatchHeader(header string) Field {
	normalized := NormalizeHeader(header)
	if normalized == "" {
		return FieldCustom
	}

	if Field(normalized).IsKnown() {
		return Field(normalized)
	}

	if field, ok := headerAliases[normalized]; ok {
		return field
	}

	for _, field := range KnownFields() {
		name := string(field)
		if strings.Contains(normalized, name) || strings.Contains(name, normalized) {
			return field
		}
	}

	if strings.Contains(normalized, "product") && strings.Contains(normalized, "code") {
		return FieldSupplierProductCode
	}
	if strings.Contains(normalized, "serial") || strings.Contains(normalized, "sn") {
		return FieldSerialNumber
	}

	return FieldCustom
}
