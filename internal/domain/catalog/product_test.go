package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	t.Run("uppercases the code and seeds the template from it", func(t *testing.T) {
		product, err := NewProduct("uc11-n1", "LoRaWAN Node")
		require.NoError(t, err)
		assert.Equal(t, "UC11-N1", product.Code)
		assert.Equal(t, "UC11-N1", product.TemplateCode)
		assert.Equal(t, TrackingNone, product.Tracking)
		assert.True(t, product.PurchasePrice.IsZero())
	})

	t.Run("rejects an empty code", func(t *testing.T) {
		_, err := NewProduct("", "LoRaWAN Node")
		require.Error(t, err)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := NewProduct("UC11-N1", "")
		require.Error(t, err)
	})
}

func TestNewSerialTrackedProduct(t *testing.T) {
	product, err := NewSerialTrackedProduct("UC11-N1", "LoRaWAN Node")
	require.NoError(t, err)
	assert.True(t, product.IsSerialTracked())
}

func TestSetTemplateCode(t *testing.T) {
	product, err := NewProduct("UC11-N1-868M", "LoRaWAN Node EU868")
	require.NoError(t, err)

	version := product.Version
	product.SetTemplateCode("uc11-n1")
	assert.Equal(t, "UC11-N1", product.TemplateCode)
	assert.Equal(t, version+1, product.Version)
}

func TestSetPurchasePrice(t *testing.T) {
	t.Run("stores the price", func(t *testing.T) {
		product, err := NewProduct("UC11-N1", "LoRaWAN Node")
		require.NoError(t, err)

		require.NoError(t, product.SetPurchasePrice(decimal.NewFromFloat(49.90)))
		assert.True(t, product.PurchasePrice.Equal(decimal.NewFromFloat(49.90)))
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		product, err := NewProduct("UC11-N1", "LoRaWAN Node")
		require.NoError(t, err)

		err = product.SetPurchasePrice(decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.True(t, product.PurchasePrice.IsZero())
	})
}

func TestNewSupplierProduct(t *testing.T) {
	t.Run("trims the supplier's code for the product", func(t *testing.T) {
		sp, err := NewSupplierProduct(uuid.New(), uuid.New(), " VENDOR-UC11 ")
		require.NoError(t, err)
		assert.Equal(t, "VENDOR-UC11", sp.ProductCode)
	})

	t.Run("rejects a missing supplier reference", func(t *testing.T) {
		_, err := NewSupplierProduct(uuid.Nil, uuid.New(), "VENDOR-UC11")
		require.Error(t, err)
	})
}
