package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/productinfo"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Outcome classifies one resolution attempt
type Outcome string

const (
	// OutcomeResolved means a single catalog product was determined
	OutcomeResolved Outcome = "resolved"
	// OutcomeRuleNoProduct means a combination rule recognized the row
	// but carries no product assignment yet
	OutcomeRuleNoProduct Outcome = "rule_no_product"
	// OutcomeUnresolved means no step could place the row; it has been
	// recorded in the unmatched registry
	OutcomeUnresolved Outcome = "unresolved"
)

// Resolution is the result of resolving one row against a configuration
type Resolution struct {
	Outcome   Outcome
	ProductID *uuid.UUID
	// RuleID is set when a combination rule matched the row
	RuleID *uuid.UUID
	// SupplierCode is the effective code after rule combination, used
	// for the supplier product association on the stored record
	SupplierCode string
	Reason       string
}

// Resolver places one mapped row onto a catalog product. The steps run
// in a fixed order and the first successful one wins: combination rules,
// manual registry overrides, then a code search scoped to the supplier
// group. Rows that fall through every step are aggregated into the
// unmatched registry.
type Resolver struct {
	suppliers        partner.SupplierRepository
	products         catalog.ProductRepository
	supplierProducts catalog.SupplierProductRepository
	rules            mapping.CombinationRuleRepository
	unmatched        mapping.UnmatchedModelRepository
	log              *zap.Logger
}

// NewResolver creates a product resolver
func NewResolver(
	suppliers partner.SupplierRepository,
	products catalog.ProductRepository,
	supplierProducts catalog.SupplierProductRepository,
	rules mapping.CombinationRuleRepository,
	unmatched mapping.UnmatchedModelRepository,
	log *zap.Logger,
) *Resolver {
	return &Resolver{
		suppliers:        suppliers,
		products:         products,
		supplierProducts: supplierProducts,
		rules:            rules,
		unmatched:        unmatched,
		log:              log,
	}
}

// Resolve runs the resolution steps for one row. Unresolved rows are
// recorded in the unmatched registry as a side effect, so a returned
// OutcomeUnresolved only needs tallying by the caller.
func (r *Resolver) Resolve(ctx context.Context, config *mapping.ImportConfig, row *productinfo.RowValues) (Resolution, error) {
	log := logger.WithLogger(ctx, r.log).With(
		zap.String("config_id", config.ID.String()),
		zap.String("serial_number", row.SerialNumber),
		zap.String("model_no", row.ModelNo),
	)

	group, err := r.suppliers.FindGroup(ctx, config.SupplierID)
	if err != nil {
		return Resolution{}, err
	}
	groupIDs := partner.GroupIDs(group)
	log.Debug("resolved supplier group", zap.Int("group_size", len(groupIDs)))

	if res, matched, err := r.resolveByRules(ctx, config, row, groupIDs, log); err != nil {
		return Resolution{}, err
	} else if matched {
		return res, nil
	}

	if res, matched, err := r.resolveByRegistry(ctx, config, row, groupIDs, log); err != nil {
		return Resolution{}, err
	} else if matched {
		return res, nil
	}

	if res, matched, err := r.resolveByCatalog(ctx, row, groupIDs, log); err != nil {
		return Resolution{}, err
	} else if matched {
		return res, nil
	}

	if err := r.recordUnmatched(ctx, config, row); err != nil {
		return Resolution{}, err
	}
	log.Info("row unresolved, recorded in unmatched registry")
	return Resolution{Outcome: OutcomeUnresolved, SupplierCode: row.EffectiveCode(), Reason: "no rule, override or catalog match"}, nil
}

// resolveByRules evaluates the configuration's combination rules in
// position order. The first value match wins. A matching rule whose
// product is not associated with the supplier group is skipped and
// evaluation continues.
func (r *Resolver) resolveByRules(ctx context.Context, config *mapping.ImportConfig, row *productinfo.RowValues, groupIDs []uuid.UUID, log *logger.ContextLogger) (Resolution, bool, error) {
	for i := range config.Rules {
		rule := &config.Rules[i]
		value1 := mappedValue(config, rule.Field1ID, row)
		value2 := mappedValue(config, rule.Field2ID, row)
		if !rule.Matches(value1, value2) {
			continue
		}

		// usage counts once per distinct serial, on any value match
		if rule.MarkSerialApplied(row.SerialNumber) {
			if err := r.rules.Save(ctx, rule); err != nil {
				return Resolution{}, false, err
			}
		}

		code := rule.Combine(value1, value2, row.EffectiveCode())
		ruleID := rule.ID

		if rule.ProductID == nil {
			log.Info("combination rule matched without product assignment",
				zap.String("rule_id", ruleID.String()),
				zap.String("combined_code", code))
			return Resolution{
				Outcome:      OutcomeRuleNoProduct,
				RuleID:       &ruleID,
				SupplierCode: code,
				Reason:       "rule " + rule.Name + " awaits a product assignment",
			}, true, nil
		}

		ok, err := r.supplierProducts.ExistsForSuppliers(ctx, *rule.ProductID, groupIDs)
		if err != nil {
			return Resolution{}, false, err
		}
		if !ok {
			log.Warn("combination rule product outside supplier group, skipping rule",
				zap.String("rule_id", ruleID.String()),
				zap.String("product_id", rule.ProductID.String()))
			continue
		}

		log.Info("row resolved by combination rule",
			zap.String("rule_id", ruleID.String()),
			zap.String("product_id", rule.ProductID.String()),
			zap.String("combined_code", code))
		return Resolution{
			Outcome:      OutcomeResolved,
			ProductID:    rule.ProductID,
			RuleID:       &ruleID,
			SupplierCode: code,
		}, true, nil
	}
	return Resolution{}, false, nil
}

// resolveByRegistry applies a manual product assignment recorded on an
// unmatched registry entry for this model number. Overrides recorded
// under any supplier of the group apply; the configured supplier's own
// entry wins when several exist.
func (r *Resolver) resolveByRegistry(ctx context.Context, config *mapping.ImportConfig, row *productinfo.RowValues, groupIDs []uuid.UUID, log *logger.ContextLogger) (Resolution, bool, error) {
	if row.ModelNo == "" {
		return Resolution{}, false, nil
	}
	entries, err := r.unmatched.FindBySuppliersAndModel(ctx, groupIDs, mapping.NormalizeModelNo(row.ModelNo))
	if err != nil {
		return Resolution{}, false, err
	}
	var entry *mapping.UnmatchedModelEntry
	for i := range entries {
		if entries[i].ProductID == nil {
			continue
		}
		if entries[i].SupplierID == config.SupplierID {
			entry = &entries[i]
			break
		}
		if entry == nil {
			entry = &entries[i]
		}
	}
	if entry == nil {
		return Resolution{}, false, nil
	}
	log.Info("row resolved by unmatched registry override",
		zap.String("entry_id", entry.ID.String()),
		zap.String("product_id", entry.ProductID.String()))
	return Resolution{
		Outcome:      OutcomeResolved,
		ProductID:    entry.ProductID,
		SupplierCode: row.EffectiveCode(),
	}, true, nil
}

// resolveByCatalog searches the catalog by code, scoped to the supplier
// group. Exactly one candidate resolves; several candidates are treated
// as ambiguous rather than guessed at.
func (r *Resolver) resolveByCatalog(ctx context.Context, row *productinfo.RowValues, groupIDs []uuid.UUID, log *logger.ContextLogger) (Resolution, bool, error) {
	codes := []string{row.EffectiveCode()}
	if row.ModelNo != "" && row.ModelNo != codes[0] {
		codes = append(codes, row.ModelNo)
	}

	for _, code := range codes {
		if code == "" {
			continue
		}
		candidates, err := r.products.SearchByCodeForSuppliers(ctx, groupIDs, code)
		if err != nil {
			return Resolution{}, false, err
		}
		switch len(candidates) {
		case 0:
			continue
		case 1:
			productID := candidates[0].ID
			log.Info("row resolved by catalog code search",
				zap.String("code", code),
				zap.String("product_id", productID.String()))
			return Resolution{
				Outcome:      OutcomeResolved,
				ProductID:    &productID,
				SupplierCode: row.EffectiveCode(),
			}, true, nil
		default:
			log.Warn("catalog code search ambiguous, routing to unmatched registry",
				zap.String("code", code),
				zap.Int("candidates", len(candidates)))
			return Resolution{}, false, nil
		}
	}
	return Resolution{}, false, nil
}

// recordUnmatched folds the row into the registry entry for its model
// number, creating the entry on first sight.
func (r *Resolver) recordUnmatched(ctx context.Context, config *mapping.ImportConfig, row *productinfo.RowValues) error {
	modelNo := row.ModelNo
	if modelNo == "" {
		// entries for model-less rows key by their code instead
		modelNo = row.SupplierProductCode
	}
	entry, err := r.unmatched.FindBySupplierAndModel(ctx, config.SupplierID, mapping.NormalizeModelNo(modelNo))
	if err != nil {
		if err != shared.ErrNotFound {
			return err
		}
		entry, err = mapping.NewUnmatchedModelEntry(config.SupplierID, row.ModelNo, row.SupplierProductCode)
		if err != nil {
			return err
		}
	}
	if err := entry.MergeRow(row.SerialNumber, row.Raw()); err != nil {
		return err
	}
	return r.unmatched.Save(ctx, entry)
}

// mappedValue reads the row value a combination rule field refers to,
// resolving the mapping to either a known attribute or a custom name.
func mappedValue(config *mapping.ImportConfig, mappingID uuid.UUID, row *productinfo.RowValues) string {
	m := config.FindMapping(mappingID)
	if m == nil {
		return ""
	}
	if m.IsCustom() {
		return row.Custom[m.CustomFieldName]
	}
	return row.Get(m.Destination)
}
