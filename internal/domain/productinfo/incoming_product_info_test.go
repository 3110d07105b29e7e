package productinfo

import (
	"testing"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIncomingProductInfo(t *testing.T) {
	t.Run("creates a pending unit", func(t *testing.T) {
		info, err := NewIncomingProductInfo(uuid.New(), "SN-001")
		require.NoError(t, err)
		assert.Equal(t, StatePending, info.State)
		assert.True(t, info.IsPending())
	})

	t.Run("requires a serial number", func(t *testing.T) {
		_, err := NewIncomingProductInfo(uuid.New(), "  ")
		require.Error(t, err)
	})

	t.Run("requires a supplier", func(t *testing.T) {
		_, err := NewIncomingProductInfo(uuid.Nil, "SN-001")
		require.Error(t, err)
	})
}

func TestApplyValues(t *testing.T) {
	t.Run("copies mapped values onto the record", func(t *testing.T) {
		info, err := NewIncomingProductInfo(uuid.New(), "SN-001")
		require.NoError(t, err)

		row := NewRowValues()
		row.Set(mapping.FieldModelNo, "UC11-N1")
		row.Set(mapping.FieldMAC1, "24:E1:24:00:00:01")
		row.Set(mapping.FieldAppKey, "5572404C696E6B4C6F52613230313823")
		row.SetCustom("x_warranty_months", "24")
		info.ApplyValues(row)

		assert.Equal(t, "UC11-N1", info.ModelNo)
		assert.Equal(t, "24:E1:24:00:00:01", info.MAC1)
		assert.Equal(t, "5572404C696E6B4C6F52613230313823", info.AppKey)
		assert.Equal(t, "24", info.CustomValue("x_warranty_months"))
	})

	t.Run("empty incoming values keep stored ones", func(t *testing.T) {
		info, err := NewIncomingProductInfo(uuid.New(), "SN-001")
		require.NoError(t, err)

		first := NewRowValues()
		first.Set(mapping.FieldModelNo, "UC11-N1")
		first.Set(mapping.FieldIMEI, "868333031234567")
		info.ApplyValues(first)

		second := NewRowValues()
		second.Set(mapping.FieldModelNo, "UC11-N1")
		info.ApplyValues(second)

		assert.Equal(t, "868333031234567", info.IMEI)
	})

	t.Run("re-applying values keeps the received state", func(t *testing.T) {
		info, err := NewIncomingProductInfo(uuid.New(), "SN-001")
		require.NoError(t, err)
		info.MarkReceived(uuid.New())

		row := NewRowValues()
		row.Set(mapping.FieldModelNo, "UC11-N1")
		info.ApplyValues(row)

		assert.Equal(t, StateReceived, info.State)
	})

	t.Run("merges custom values across imports", func(t *testing.T) {
		info, err := NewIncomingProductInfo(uuid.New(), "SN-001")
		require.NoError(t, err)

		first := NewRowValues()
		first.SetCustom("x_color", "white")
		info.ApplyValues(first)

		second := NewRowValues()
		second.SetCustom("x_firmware", "1.0.4")
		info.ApplyValues(second)

		assert.Equal(t, "white", info.CustomValue("x_color"))
		assert.Equal(t, "1.0.4", info.CustomValue("x_firmware"))
	})
}

func TestMarkReceived(t *testing.T) {
	info, err := NewIncomingProductInfo(uuid.New(), "SN-001")
	require.NoError(t, err)

	transferID := uuid.New()
	assert.True(t, info.MarkReceived(transferID))
	assert.Equal(t, StateReceived, info.State)
	require.NotNil(t, info.TransferID)
	assert.Equal(t, transferID, *info.TransferID)

	// second validation of the same receipt is a no-op
	assert.False(t, info.MarkReceived(uuid.New()))
	assert.Equal(t, transferID, *info.TransferID)
}

func TestRowValues(t *testing.T) {
	t.Run("routes identifying fields to typed slots", func(t *testing.T) {
		row := NewRowValues()
		row.Set(mapping.FieldSerialNumber, " SN-001 ")
		row.Set(mapping.FieldModelNo, "UC11")
		row.Set(mapping.FieldSupplierProductCode, "UC11-N1-868M")

		assert.Equal(t, "SN-001", row.SerialNumber)
		assert.Equal(t, "UC11", row.ModelNo)
		assert.Equal(t, "UC11-N1-868M", row.SupplierProductCode)
		assert.Empty(t, row.Attrs)
	})

	t.Run("drops empty values", func(t *testing.T) {
		row := NewRowValues()
		row.Set(mapping.FieldMAC1, "   ")
		row.SetCustom("x_color", "")
		assert.True(t, row.IsEmpty())
	})

	t.Run("round trips through the raw form", func(t *testing.T) {
		row := NewRowValues()
		row.Set(mapping.FieldSerialNumber, "SN-001")
		row.Set(mapping.FieldMAC1, "aa:bb")
		row.SetCustom("x_color", "white")

		rebuilt := RowValuesFromRaw(row.Raw())
		assert.Equal(t, "SN-001", rebuilt.SerialNumber)
		assert.Equal(t, "aa:bb", rebuilt.Get(mapping.FieldMAC1))
		assert.Equal(t, "white", rebuilt.Custom["x_color"])
	})
}
