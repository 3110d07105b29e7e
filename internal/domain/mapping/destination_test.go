package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "serial_number", NormalizeHeader("  Serial Number "))
	assert.Equal(t, "model_no", NormalizeHeader("MODEL NO"))
	assert.Equal(t, "sn", NormalizeHeader("SN"))
}

func TestMatchHeader(t *testing.T) {
	t.Run("matches exact normalized field names", func(t *testing.T) {
		assert.Equal(t, FieldSerialNumber, MatchHeader("SN"))
		assert.Equal(t, FieldModelNo, MatchHeader("Model No"))
		assert.Equal(t, FieldIMEI, MatchHeader("imei"))
	})

	t.Run("matches aliases", func(t *testing.T) {
		assert.Equal(t, FieldSerialNumber, MatchHeader("Serial"))
		assert.Equal(t, FieldSerialNumber, MatchHeader("SERIAL NO"))
		assert.Equal(t, FieldModelNo, MatchHeader("Model"))
		assert.Equal(t, FieldAppKey, MatchHeader("AppKey"))
		assert.Equal(t, FieldDevEUI, MatchHeader("DevEUI"))
	})

	t.Run("matches by containment", func(t *testing.T) {
		assert.Equal(t, FieldMAC1, MatchHeader("Device MAC1"))
		assert.Equal(t, FieldWiFiSSID, MatchHeader("Default WiFi SSID"))
	})

	t.Run("treats product code columns specially", func(t *testing.T) {
		assert.Equal(t, FieldSupplierProductCode, MatchHeader("Product Code"))
		assert.Equal(t, FieldSupplierProductCode, MatchHeader("Supplier Product Code"))
	})

	t.Run("unknown headers fall back to custom", func(t *testing.T) {
		assert.Equal(t, FieldCustom, MatchHeader("Warranty Months"))
		assert.Equal(t, FieldCustom, MatchHeader(""))
	})
}

func TestFieldIsIdentifying(t *testing.T) {
	assert.True(t, FieldSerialNumber.IsIdentifying())
	assert.True(t, FieldModelNo.IsIdentifying())
	assert.False(t, FieldMAC1.IsIdentifying())
	assert.False(t, FieldCustom.IsIdentifying())
}
