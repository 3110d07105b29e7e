package report

import (
	"bytes"
	"context"
	"testing"

	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/warehouse"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	transfers warehouse.TransferRepository
	infos     productinfo.Repository
	products  catalog.ProductRepository
	supplier  *partner.Supplier
	svc       *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, persistence.Migrate(db))

	env := &testEnv{
		transfers: persistence.NewGormTransferRepository(db),
		infos:     persistence.NewGormProductInfoRepository(db),
		products:  persistence.NewGormProductRepository(db),
	}
	env.supplier, err = partner.NewSupplier("MILESIGHT", "Milesight")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormSupplierRepository(db).Save(context.Background(), env.supplier))

	env.svc = NewService(env.transfers, env.infos, env.products, NewLogMailer(zap.NewNop()), zap.NewNop())
	return env
}

func (env *testEnv) addReceived(t *testing.T, serial string, product *catalog.Product, configure func(*productinfo.IncomingProductInfo)) {
	t.Helper()
	info, err := productinfo.NewImportedProductInfo(env.supplier.ID, serial)
	require.NoError(t, err)
	info.AssignProduct(&product.ID)
	if configure != nil {
		configure(info)
	}
	require.NoError(t, env.infos.Save(context.Background(), info))
}

func (env *testEnv) addTransfer(t *testing.T, reference string, lines ...warehouse.TransferLine) *warehouse.Transfer {
	t.Helper()
	transfer, err := warehouse.NewTransfer(reference, env.supplier.ID)
	require.NoError(t, err)
	for _, line := range lines {
		require.NoError(t, transfer.AddLine(line.ProductID, line.LotSerial, line.Quantity))
	}
	require.NoError(t, env.transfers.Save(context.Background(), transfer))
	return transfer
}

func sheetRows(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestService_GenerateForTransfer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product, err := catalog.NewSerialTrackedProduct("UC11-N1", "LoRaWAN Sensor")
	require.NoError(t, err)
	require.NoError(t, env.products.Save(ctx, product))

	env.addReceived(t, "SN-001", product, func(info *productinfo.IncomingProductInfo) {
		info.ModelNo = "UC11-N1"
		info.MAC1 = "AA:BB:CC:00:00:01"
		info.DevEUI = "24E124AAAA000001"
	})
	env.addReceived(t, "SN-002", product, func(info *productinfo.IncomingProductInfo) {
		info.ModelNo = "UC11-N1"
		info.MAC1 = "AA:BB:CC:00:00:02"
	})

	transfer := env.addTransfer(t, "WH/OUT/0001",
		warehouse.TransferLine{ProductID: product.ID, LotSerial: "SN-001", Quantity: 1},
		warehouse.TransferLine{ProductID: product.ID, LotSerial: "SN-002", Quantity: 1},
		warehouse.TransferLine{ProductID: product.ID, LotSerial: "SN-NEVER-SEEN", Quantity: 1},
	)

	opts := Options{Fields: []mapping.Field{mapping.FieldModelNo, mapping.FieldMAC1, mapping.FieldDevEUI}}
	data, err := env.svc.GenerateForTransfer(ctx, transfer.ID, opts)
	require.NoError(t, err)

	rows := sheetRows(t, data, "Product Info")
	require.Len(t, rows, 3) // header + two serials, the unknown one skipped
	assert.Equal(t, []string{"Product", "Serial Number", "Model No.", "MAC1", "DEVEUI"}, rows[0])
	assert.Equal(t, []string{"LoRaWAN Sensor", "SN-001", "UC11-N1", "AA:BB:CC:00:00:01", "24E124AAAA000001"}, rows[1])
	assert.Equal(t, "SN-002", rows[2][1])
}

func TestService_GenerateForTransfer_TemplateFallbackAndCustomColumns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	announced, err := catalog.NewSerialTrackedProduct("AM103-868M", "Ambience Monitor EU")
	require.NoError(t, err)
	announced.SetTemplateCode("AM103")
	require.NoError(t, env.products.Save(ctx, announced))

	shipped, err := catalog.NewSerialTrackedProduct("AM103-915M", "Ambience Monitor US")
	require.NoError(t, err)
	shipped.SetTemplateCode("AM103")
	require.NoError(t, env.products.Save(ctx, shipped))

	env.addReceived(t, "SN-100", announced, func(info *productinfo.IncomingProductInfo) {
		info.ModelNo = "AM103"
		row := productinfo.NewRowValues()
		row.SetCustom("x_band", "868")
		info.ApplyValues(row)
	})

	transfer := env.addTransfer(t, "WH/OUT/0002",
		warehouse.TransferLine{ProductID: shipped.ID, LotSerial: "SN-100", Quantity: 1},
	)

	opts := Options{
		SheetName:     "Traceability",
		Fields:        []mapping.Field{mapping.FieldModelNo},
		IncludeCustom: true,
	}
	data, err := env.svc.GenerateForTransfer(ctx, transfer.ID, opts)
	require.NoError(t, err)

	rows := sheetRows(t, data, "Traceability")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Product", "Serial Number", "Model No.", "x_band"}, rows[0])
	assert.Equal(t, []string{"Ambience Monitor US", "SN-100", "AM103", "868"}, rows[1])
}

func TestLogMailer_Send(t *testing.T) {
	mailer := NewLogMailer(zap.NewNop())
	err := mailer.Send(context.Background(), "ops@example.com", "report", []byte("xlsx"), "report.xlsx")
	assert.NoError(t, err)
}
