package persistence

import (
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/warehouse"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted entity
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&partner.Supplier{},
		&catalog.Product{},
		&catalog.SupplierProduct{},
		&mapping.ImportConfig{},
		&mapping.ColumnMapping{},
		&mapping.CombinationRule{},
		&mapping.UnmatchedModelEntry{},
		&productinfo.IncomingProductInfo{},
		&warehouse.Transfer{},
		&warehouse.TransferLine{},
	)
}
