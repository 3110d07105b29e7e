package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv wires the import services over an in-memory database
type testEnv struct {
	db               *gorm.DB
	suppliers        partner.SupplierRepository
	products         catalog.ProductRepository
	supplierProducts catalog.SupplierProductRepository
	configs          mapping.ImportConfigRepository
	rules            mapping.CombinationRuleRepository
	unmatched        mapping.UnmatchedModelRepository
	infos            productinfo.Repository

	supplier *partner.Supplier
	config   *mapping.ImportConfig

	importSvc    *ImportService
	configSvc    *ConfigService
	unmatchedSvc *UnmatchedService
	analysisSvc  *AnalysisService
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
		db:               db,
		suppliers:        persistence.NewGormSupplierRepository(db),
		products:         persistence.NewGormProductRepository(db),
		supplierProducts: persistence.NewGormSupplierProductRepository(db),
		configs:          persistence.NewGormImportConfigRepository(db),
		rules:            persistence.NewGormCombinationRuleRepository(db),
		unmatched:        persistence.NewGormUnmatchedModelRepository(db),
		infos:            persistence.NewGormProductInfoRepository(db),
	}

	ctx := context.Background()
	log := zap.NewNop()

	env.supplier, err = partner.NewSupplier("MILESIGHT", "Milesight")
	require.NoError(t, err)
	require.NoError(t, env.suppliers.Save(ctx, env.supplier))

	resolver := NewResolver(env.suppliers, env.products, env.supplierProducts, env.rules, env.unmatched, log)
	env.importSvc = NewImportService(env.configs, env.infos, resolver, log, WithChunkSize(2))
	env.configSvc = NewConfigService(env.configs, env.suppliers, env.products, log)
	env.unmatchedSvc = NewUnmatchedService(env.unmatched, env.products, env.supplierProducts, env.infos, log)
	env.analysisSvc = NewAnalysisService(env.configs, log)

	env.config = env.newConfig(t, "Milesight CSV", []string{"SN", "Model No", "MAC1", "Band"})
	return env
}

// newConfig creates a saved configuration with mappings derived from the
// given headers.
func (env *testEnv) newConfig(t *testing.T, name string, headers []string) *mapping.ImportConfig {
	t.Helper()
	config, err := mapping.NewImportConfig(name, env.supplier.ID, mapping.FileTypeCSV)
	require.NoError(t, err)
	config.ReplaceMappingsFromHeaders(headers, "sample.csv")
	require.NoError(t, env.configs.Save(context.Background(), config))

	loaded, err := env.configs.FindByID(context.Background(), config.ID)
	require.NoError(t, err)
	return loaded
}

func (env *testEnv) addProduct(t *testing.T, code string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewSerialTrackedProduct(code, code+" device")
	require.NoError(t, err)
	require.NoError(t, env.products.Save(context.Background(), p))
	return p
}

func (env *testEnv) associate(t *testing.T, product *catalog.Product, code string) {
	t.Helper()
	sp, err := catalog.NewSupplierProduct(env.supplier.ID, product.ID, code)
	require.NoError(t, err)
	require.NoError(t, env.supplierProducts.Save(context.Background(), sp))
}

func (env *testEnv) mappingFor(t *testing.T, column string) *mapping.ColumnMapping {
	t.Helper()
	for i := range env.config.Mappings {
		if env.config.Mappings[i].SourceColumn == column {
			return &env.config.Mappings[i]
		}
	}
	t.Fatalf("no mapping for column %q", column)
	return nil
}

func (env *testEnv) reloadConfig(t *testing.T) {
	t.Helper()
	loaded, err := env.configs.FindByID(context.Background(), env.config.ID)
	require.NoError(t, err)
	env.config = loaded
}

func csvFile(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

func TestImportService_CatalogResolution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "UC11-N1")
	env.associate(t, product, "MS-UC11")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-001,UC11-N1,AA:BB:CC:00:00:01,868",
		"SN-002,UC11-N1,AA:BB:CC:00:00:02,868",
	)

	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalRows)
	assert.Equal(t, 2, summary.Created)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Unmatched)
	assert.Equal(t, 0, summary.ErrorRows)

	info, err := env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-001")
	require.NoError(t, err)
	require.NotNil(t, info.ProductID)
	assert.Equal(t, "UC11-N1", info.ModelNo)
	assert.Equal(t, "AA:BB:CC:00:00:01", info.MAC1)
	assert.Equal(t, "868", info.CustomValue("x_band"))
	assert.Equal(t, productinfo.StateReceived, info.State)
}

func TestImportService_CatalogSearchScopedToSupplierGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// X1 is only sold by an unrelated supplier; X2 by nobody
	foreign := env.addProduct(t, "X1")
	env.addProduct(t, "X2")
	other, err := partner.NewSupplier("OTHER", "Other Corp")
	require.NoError(t, err)
	require.NoError(t, env.suppliers.Save(ctx, other))
	sp, err := catalog.NewSupplierProduct(other.ID, foreign.ID, "X1")
	require.NoError(t, err)
	require.NoError(t, env.supplierProducts.Save(ctx, sp))

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-010,X1,AA:BB:CC:00:00:10,868",
		"SN-011,X2,AA:BB:CC:00:00:11,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 2, summary.Unmatched)

	// no record is created from a product outside the supplier group
	_, err = env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-010")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "x1")
	assert.NoError(t, err)
}

func TestImportService_ReimportUpdatesInsteadOfDuplicating(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "UC11-N1")
	env.associate(t, product, "MS-UC11")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-001,UC11-N1,AA:BB:CC:00:00:01,868",
	)

	first, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 1, second.Updated)

	var count int64
	require.NoError(t, env.db.Model(&productinfo.IncomingProductInfo{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportService_RuleTakesPrecedenceOverCatalog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// the catalog would resolve UC200 by code to this product
	catalogProduct := env.addProduct(t, "UC200")
	env.associate(t, catalogProduct, "MS-UC200")
	ruleProduct := env.addProduct(t, "UC200-868M")
	env.associate(t, ruleProduct, "UC200-EU")

	modelMapping := env.mappingFor(t, "Model No")
	bandMapping := env.mappingFor(t, "Band")
	rule, err := mapping.NewCombinationRule(env.config.ID, "UC200 EU band", modelMapping.ID, bandMapping.ID, "UC200", "868")
	require.NoError(t, err)
	require.NoError(t, rule.SetPattern("{0}-{1}M", ""))
	rule.AssignProduct(&ruleProduct.ID)
	require.NoError(t, env.config.AddRule(rule))
	require.NoError(t, env.configs.Save(ctx, env.config))

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-100,UC200,AA:BB:CC:00:01:00,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	info, err := env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-100")
	require.NoError(t, err)
	require.NotNil(t, info.ProductID)
	assert.Equal(t, ruleProduct.ID, *info.ProductID)
	// the combined code becomes the supplier product code on the record
	assert.Equal(t, "UC200-868M", info.SupplierProductCode)
}

func TestImportService_RuleWithoutProductCountsSeparately(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	modelMapping := env.mappingFor(t, "Model No")
	bandMapping := env.mappingFor(t, "Band")
	rule, err := mapping.NewCombinationRule(env.config.ID, "EM300 queue", modelMapping.ID, bandMapping.ID, "EM300", "*")
	require.NoError(t, err)
	require.NoError(t, env.config.AddRule(rule))
	require.NoError(t, env.configs.Save(ctx, env.config))

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-200,EM300,AA:BB:CC:00:02:00,915",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.RuleWithoutProduct)
	assert.Equal(t, 0, summary.Unmatched)
	assert.Equal(t, 0, summary.Created)

	// the row is known, not unmatched: no registry entry, no record
	_, err = env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-200")
	assert.ErrorIs(t, err, shared.ErrNotFound)
	_, err = env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "em300")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestImportService_UsageCountIdempotentAcrossReimports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ruleProduct := env.addProduct(t, "UC300-868M")
	env.associate(t, ruleProduct, "UC300-EU")

	modelMapping := env.mappingFor(t, "Model No")
	bandMapping := env.mappingFor(t, "Band")
	rule, err := mapping.NewCombinationRule(env.config.ID, "UC300 EU band", modelMapping.ID, bandMapping.ID, "UC300", "868")
	require.NoError(t, err)
	rule.AssignProduct(&ruleProduct.ID)
	require.NoError(t, env.config.AddRule(rule))
	require.NoError(t, env.configs.Save(ctx, env.config))

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-300,UC300,AA:BB:CC:00:03:00,868",
		"SN-301,UC300,AA:BB:CC:00:03:01,868",
	)

	for i := 0; i < 3; i++ {
		env.reloadConfig(t)
		_, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
		require.NoError(t, err)
	}

	rules, err := env.rules.FindByConfig(ctx, env.config.ID)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, 2, rules[0].UsageCount)
}

func TestImportService_AmbiguousCatalogMatchIsUnresolved(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	am103 := env.addProduct(t, "AM103-868M")
	env.associate(t, am103, "MS-AM103-EU")
	am103l := env.addProduct(t, "AM103L-915M")
	env.associate(t, am103l, "MS-AM103L-US")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-400,AM103,AA:BB:CC:00:04:00,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unmatched)
	assert.Equal(t, 0, summary.Created)

	entry, err := env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "am103")
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Count)
}

func TestImportService_UnmatchedAggregation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-500,MODEL-A,AA:BB:CC:00:05:00,868",
		"SN-501,MODEL-A,AA:BB:CC:00:05:01,868",
		"SN-502,MODEL-B,AA:BB:CC:00:05:02,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Unmatched)

	entryA, err := env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "model-a")
	require.NoError(t, err)
	assert.Equal(t, 2, entryA.Count)

	entryB, err := env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "model-b")
	require.NoError(t, err)
	assert.Equal(t, 1, entryB.Count)

	t.Run("re-import does not double count", func(t *testing.T) {
		_, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
		require.NoError(t, err)
		entryA, err := env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "model-a")
		require.NoError(t, err)
		assert.Equal(t, 2, entryA.Count)
	})
}

func TestImportService_RegistryOverrideResolvesFutureImports(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "WS203")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-600,WS203-OLD,AA:BB:CC:00:06:00,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Unmatched)

	entry, err := env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "ws203-old")
	require.NoError(t, err)
	require.NoError(t, env.unmatchedSvc.AssignProduct(ctx, entry.ID, product.ID))

	again, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, again.Created)
	assert.Equal(t, 0, again.Unmatched)

	info, err := env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-600")
	require.NoError(t, err)
	require.NotNil(t, info.ProductID)
	assert.Equal(t, product.ID, *info.ProductID)
}

func TestImportService_RegistryOverrideSharedAcrossSupplierGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "WS301")

	contact, err := partner.NewContact(env.supplier, "MILESIGHT-EU", "Milesight EU")
	require.NoError(t, err)
	require.NoError(t, env.suppliers.Save(ctx, contact))

	// the override was recorded under the contact, not the parent the
	// configuration belongs to
	entry, err := mapping.NewUnmatchedModelEntry(contact.ID, "WS301-OLD", "")
	require.NoError(t, err)
	require.NoError(t, env.unmatched.Save(ctx, entry))
	require.NoError(t, env.unmatchedSvc.AssignProduct(ctx, entry.ID, product.ID))

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-020,WS301-OLD,AA:BB:CC:00:00:20,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 0, summary.Unmatched)

	info, err := env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-020")
	require.NoError(t, err)
	require.NotNil(t, info.ProductID)
	assert.Equal(t, product.ID, *info.ProductID)
}

func TestImportService_ResolvedRowWithoutSerialIsAnError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "UC11-N1")
	env.associate(t, product, "MS-UC11")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		",UC11-N1,AA:BB:CC:00:00:30,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	// the model is known, but without a serial no record can be stored
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, 0, summary.Unmatched)
	assert.Equal(t, 1, summary.ErrorRows)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, string(mapping.FieldSerialNumber), summary.Errors[0].Column)
}

func TestImportService_RowErrorsDoNotAbortTheBatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "UC11-N1")
	env.associate(t, product, "MS-UC11")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		",,,",
		"SN-700,UC11-N1,AA:BB:CC:00:07:00,868",
		",UC-NO-SERIAL-NO-MODEL,,",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	// the fully empty row is skipped; the serial-less row with a model
	// goes to the unmatched registry instead of erroring
	assert.Equal(t, 1, summary.Unmatched)
	assert.Equal(t, 0, summary.ErrorRows)
}

func TestUnmatchedService_LinkReplaysStoredRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	product := env.addProduct(t, "GW100")

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-800,GW100-LEGACY,AA:BB:CC:00:08:00,868",
		"SN-801,GW100-LEGACY,AA:BB:CC:00:08:01,868",
	)
	summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", file)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Unmatched)

	entry, err := env.unmatched.FindBySupplierAndModel(ctx, env.supplier.ID, "gw100-legacy")
	require.NoError(t, err)

	result, err := env.unmatchedSvc.LinkToProduct(ctx, entry.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)

	t.Run("records carry the replayed attributes", func(t *testing.T) {
		info, err := env.infos.FindBySupplierAndSerial(ctx, env.supplier.ID, "SN-800")
		require.NoError(t, err)
		require.NotNil(t, info.ProductID)
		assert.Equal(t, product.ID, *info.ProductID)
		assert.Equal(t, "GW100-LEGACY", info.ModelNo)
		assert.Equal(t, "AA:BB:CC:00:08:00", info.MAC1)
	})

	t.Run("entry is removed from the backlog", func(t *testing.T) {
		_, err := env.unmatched.FindByID(ctx, entry.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("supplier code association makes the next import resolve", func(t *testing.T) {
		next := csvFile(
			"SN,Model No,MAC1,Band",
			"SN-802,GW100-LEGACY,AA:BB:CC:00:08:02,868",
		)
		summary, err := env.importSvc.ImportFile(ctx, env.config.ID, "units.csv", next)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Created)
		assert.Equal(t, 0, summary.Unmatched)
	})
}

func TestConfigService_LoadSampleReportsDanglingRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	modelMapping := env.mappingFor(t, "Model No")
	bandMapping := env.mappingFor(t, "Band")
	rule, err := mapping.NewCombinationRule(env.config.ID, "needs band", modelMapping.ID, bandMapping.ID, "UC500", "868")
	require.NoError(t, err)
	require.NoError(t, env.config.AddRule(rule))
	require.NoError(t, env.configs.Save(ctx, env.config))

	// the new sample drops the Band column the rule references
	sample := csvFile("SN,Model No,MAC1")
	result, err := env.configSvc.LoadSample(ctx, env.config.ID, "v2.csv", sample)
	require.NoError(t, err)
	assert.Equal(t, []string{"SN", "Model No", "MAC1"}, result.Headers)
	require.Len(t, result.DanglingRules, 1)
	assert.Equal(t, "needs band", result.DanglingRules[0].Name)

	// the rule itself survives for the operator to repoint
	rules, err := env.rules.FindByConfig(ctx, env.config.ID)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestAnalysisService_CoOccurrenceAndRuleCreation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	modelMapping := env.mappingFor(t, "Model No")
	bandMapping := env.mappingFor(t, "Band")

	// one pair is already covered by an existing rule
	covered, err := mapping.NewCombinationRule(env.config.ID, "covered", modelMapping.ID, bandMapping.ID, "UC900", "868")
	require.NoError(t, err)
	require.NoError(t, env.config.AddRule(covered))
	require.NoError(t, env.configs.Save(ctx, env.config))

	file := csvFile(
		"SN,Model No,MAC1,Band",
		"SN-900,UC900,AA:BB:CC:00:09:00,868",
		"SN-901,UC900,AA:BB:CC:00:09:01,915",
		"SN-902,UC900,AA:BB:CC:00:09:02,915",
		"SN-903,UC901,AA:BB:CC:00:09:03,868",
	)

	report, err := env.analysisSvc.AnalyzeFile(ctx, env.config.ID, "units.csv", file, modelMapping.ID, bandMapping.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Covered)
	require.Len(t, report.Pairs, 2)
	// sorted by descending count
	assert.Equal(t, ValuePair{Value1: "UC900", Value2: "915", Count: 2}, report.Pairs[0])
	assert.Equal(t, ValuePair{Value1: "UC901", Value2: "868", Count: 1}, report.Pairs[1])
	assert.Contains(t, report.Text(), "UC900 / 915: 2 rows")

	created, err := env.analysisSvc.CreateRulesFromAnalysis(ctx, env.config.ID, modelMapping.ID, bandMapping.ID, report.Pairs)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	rules, err := env.rules.FindByConfig(ctx, env.config.ID)
	require.NoError(t, err)
	assert.Len(t, rules, 3)
	for _, r := range rules[1:] {
		assert.Nil(t, r.ProductID)
	}
}
