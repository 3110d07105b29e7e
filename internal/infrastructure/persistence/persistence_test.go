package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func mustSupplier(t *testing.T, db *gorm.DB, code, name string) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier(code, name)
	require.NoError(t, err)
	require.NoError(t, NewGormSupplierRepository(db).Save(context.Background(), s))
	return s
}

func mustProduct(t *testing.T, db *gorm.DB, code, name string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewSerialTrackedProduct(code, name)
	require.NoError(t, err)
	require.NoError(t, NewGormProductRepository(db).Save(context.Background(), p))
	return p
}

func TestGormSupplierRepository_FindGroup(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormSupplierRepository(db)
	ctx := context.Background()

	parent := mustSupplier(t, db, "MILESIGHT", "Milesight")
	contact, err := partner.NewContact(parent, "MILESIGHT-EU", "Milesight EU")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, contact))
	mustSupplier(t, db, "OTHER", "Other Corp")

	t.Run("group from the parent includes all contacts", func(t *testing.T) {
		group, err := repo.FindGroup(ctx, parent.ID)
		require.NoError(t, err)
		assert.Len(t, group, 2)
	})

	t.Run("group from a contact resolves through the parent", func(t *testing.T) {
		group, err := repo.FindGroup(ctx, contact.ID)
		require.NoError(t, err)
		require.Len(t, group, 2)
		assert.Equal(t, parent.ID, group[0].ID)
	})

	t.Run("unrelated supplier is alone in its group", func(t *testing.T) {
		other, err := repo.FindByCode(ctx, "OTHER")
		require.NoError(t, err)
		group, err := repo.FindGroup(ctx, other.ID)
		require.NoError(t, err)
		assert.Len(t, group, 1)
	})
}

func TestGormProductRepository_SearchByCodeForSuppliers(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	spRepo := NewGormSupplierProductRepository(db)
	ctx := context.Background()

	supplier := mustSupplier(t, db, "MILESIGHT", "Milesight")
	other := mustSupplier(t, db, "OTHER", "Other Corp")
	ids := []uuid.UUID{supplier.ID}

	uc11 := mustProduct(t, db, "UC11-N1", "LoRaWAN Sensor")
	am103 := mustProduct(t, db, "AM103-868M", "Ambience Monitor")
	am103l := mustProduct(t, db, "AM103L-915M", "Ambience Monitor Lite")
	em300 := mustProduct(t, db, "EM300-TH", "Environment Sensor")

	associate := func(supplierID uuid.UUID, product *catalog.Product, code string) {
		sp, err := catalog.NewSupplierProduct(supplierID, product.ID, code)
		require.NoError(t, err)
		require.NoError(t, spRepo.Save(ctx, sp))
	}
	associate(supplier.ID, uc11, "MS-UC11")
	associate(supplier.ID, am103, "MS-AM103-EU")
	associate(supplier.ID, am103l, "MS-AM103L-US")
	associate(other.ID, em300, "EM300-TH")

	t.Run("exact product code match", func(t *testing.T) {
		products, err := repo.SearchByCodeForSuppliers(ctx, ids, "uc11-n1")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, uc11.ID, products[0].ID)
	})

	t.Run("exact supplier code match", func(t *testing.T) {
		products, err := repo.SearchByCodeForSuppliers(ctx, ids, "MS-UC11")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, uc11.ID, products[0].ID)
	})

	t.Run("contains match only when no exact match exists", func(t *testing.T) {
		products, err := repo.SearchByCodeForSuppliers(ctx, ids, "AM103-868")
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, am103.ID, products[0].ID)
	})

	t.Run("ambiguous contains match returns every candidate", func(t *testing.T) {
		products, err := repo.SearchByCodeForSuppliers(ctx, ids, "AM103")
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("products associated with another supplier are invisible", func(t *testing.T) {
		products, err := repo.SearchByCodeForSuppliers(ctx, ids, "EM300-TH")
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("no match", func(t *testing.T) {
		products, err := repo.SearchByCodeForSuppliers(ctx, ids, "WS500")
		require.NoError(t, err)
		assert.Empty(t, products)
	})
}

func TestGormImportConfigRepository_SaveReplacesMappings(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormImportConfigRepository(db)
	ctx := context.Background()

	supplier := mustSupplier(t, db, "MILESIGHT", "Milesight")
	config, err := mapping.NewImportConfig("Milesight xlsx", supplier.ID, mapping.FileTypeExcel)
	require.NoError(t, err)
	config.ReplaceMappingsFromHeaders([]string{"SN", "Model No", "Band"}, "v1.xlsx")
	require.NoError(t, repo.Save(ctx, config))

	loaded, err := repo.FindByID(ctx, config.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Mappings, 3)

	// re-derive from a narrower header set and save again
	loaded.ReplaceMappingsFromHeaders([]string{"SN", "Model No"}, "v2.xlsx")
	require.NoError(t, repo.Save(ctx, loaded))

	reloaded, err := repo.FindByID(ctx, config.ID)
	require.NoError(t, err)
	assert.Len(t, reloaded.Mappings, 2)
	assert.Equal(t, "v2.xlsx", reloaded.SampleFileName)
}

func TestGormProductInfoRepository_NaturalKey(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductInfoRepository(db)
	ctx := context.Background()

	supplier := mustSupplier(t, db, "MILESIGHT", "Milesight")

	info, err := productinfo.NewIncomingProductInfo(supplier.ID, "SN-001")
	require.NoError(t, err)
	info.ModelNo = "UC11"
	require.NoError(t, repo.Save(ctx, info))

	t.Run("find by supplier and serial", func(t *testing.T) {
		found, err := repo.FindBySupplierAndSerial(ctx, supplier.ID, "SN-001")
		require.NoError(t, err)
		assert.Equal(t, info.ID, found.ID)
	})

	t.Run("missing serial returns not found", func(t *testing.T) {
		_, err := repo.FindBySupplierAndSerial(ctx, supplier.ID, "SN-999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lookup by product and serial", func(t *testing.T) {
		product := mustProduct(t, db, "UC11-N1", "Sensor")
		info.AssignProduct(&product.ID)
		require.NoError(t, repo.Save(ctx, info))

		found, err := repo.FindByProductAndSerial(ctx, product.ID, "SN-001", nil)
		require.NoError(t, err)
		assert.Equal(t, info.ID, found.ID)

		// received units are still found, so re-validation can tell
		// them apart from serials that were never announced
		found.MarkReceived(uuid.New())
		require.NoError(t, repo.Save(ctx, found))
		found, err = repo.FindByProductAndSerial(ctx, product.ID, "SN-001", nil)
		require.NoError(t, err)
		assert.Equal(t, productinfo.StateReceived, found.State)
	})
}
