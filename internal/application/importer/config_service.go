package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/catalog"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/partner"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/fileparse"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// DanglingRule identifies a combination rule left referencing a mapping
// that a sample-file change removed. The rule is kept so the operator
// can repoint it instead of losing the configuration work.
type DanglingRule struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// SampleResult reports the outcome of loading a sample file
type SampleResult struct {
	Headers       []string       `json:"headers"`
	Mappings      int            `json:"mappings"`
	DanglingRules []DanglingRule `json:"dangling_rules,omitempty"`
}

// RuleInput carries the operator's parameters for a new combination rule
type RuleInput struct {
	Name               string
	Field1ID           uuid.UUID
	Field2ID           uuid.UUID
	Value1             string
	Value2             string
	CombinationPattern string
	RegexPattern       string
	ProductID          *uuid.UUID
}

// ConfigService manages import configurations, their column mappings and
// combination rules.
type ConfigService struct {
	configs   mapping.ImportConfigRepository
	suppliers partner.SupplierRepository
	products  catalog.ProductRepository
	log       *zap.Logger
}

// NewConfigService creates a configuration service
func NewConfigService(
	configs mapping.ImportConfigRepository,
	suppliers partner.SupplierRepository,
	products catalog.ProductRepository,
	log *zap.Logger,
) *ConfigService {
	return &ConfigService{
		configs:   configs,
		suppliers: suppliers,
		products:  products,
		log:       log,
	}
}

// Create creates a configuration for an existing supplier
func (s *ConfigService) Create(ctx context.Context, name string, supplierID uuid.UUID, fileType mapping.FileType) (*mapping.ImportConfig, error) {
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, err
	}

	config, err := mapping.NewImportConfig(name, supplierID, fileType)
	if err != nil {
		return nil, err
	}
	config.EnsureRequiredMappings()
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.log).Info("import configuration created",
		zap.String("config_id", config.ID.String()),
		zap.String("supplier_id", supplierID.String()))
	return config, nil
}

// Get loads one configuration with its mappings and rules
func (s *ConfigService) Get(ctx context.Context, id uuid.UUID) (*mapping.ImportConfig, error) {
	return s.configs.FindByID(ctx, id)
}

// ListBySupplier lists a supplier's configurations
func (s *ConfigService) ListBySupplier(ctx context.Context, supplierID uuid.UUID) ([]mapping.ImportConfig, error) {
	return s.configs.FindBySupplier(ctx, supplierID)
}

// List lists configurations matching the filter
func (s *ConfigService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[mapping.ImportConfig], error) {
	return s.configs.FindAll(ctx, filter)
}

// Delete removes a configuration with its mappings and rules
func (s *ConfigService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.configs.Delete(ctx, id)
}

// LoadSample reads the header row of a sample file and destructively
// re-derives the configuration's mappings from it. Rules referencing
// removed mappings are reported, not deleted.
func (s *ConfigService) LoadSample(ctx context.Context, configID uuid.UUID, fileName string, data []byte) (*SampleResult, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}

	headers, err := ReadHeaders(fileName, data)
	if err != nil {
		return nil, err
	}

	dangling := config.ReplaceMappingsFromHeaders(headers, fileName)
	config.EnsureRequiredMappings()
	// rules may dangle after a header change; only the mappings are
	// validated here and the dangling rules are reported to the operator
	if err := config.ValidateMappings(); err != nil {
		return nil, err
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}

	result := &SampleResult{Headers: headers, Mappings: len(config.Mappings)}
	for i := range dangling {
		result.DanglingRules = append(result.DanglingRules, DanglingRule{ID: dangling[i].ID, Name: dangling[i].Name})
	}

	logger.WithLogger(ctx, s.log).Info("sample file loaded",
		zap.String("config_id", configID.String()),
		zap.String("file_name", fileName),
		zap.Int("headers", len(headers)),
		zap.Int("dangling_rules", len(result.DanglingRules)))
	return result, nil
}

// SetMappingDestination repoints one column mapping
func (s *ConfigService) SetMappingDestination(ctx context.Context, configID, mappingID uuid.UUID, destination mapping.Field, label string) (*mapping.ImportConfig, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}
	m := config.FindMapping(mappingID)
	if m == nil {
		return nil, shared.ErrNotFound
	}
	if err := m.SetDestination(destination, label, config.CustomFieldNames()); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// AddRule creates a combination rule on a configuration
func (s *ConfigService) AddRule(ctx context.Context, configID uuid.UUID, input RuleInput) (*mapping.CombinationRule, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}

	rule, err := mapping.NewCombinationRule(configID, input.Name, input.Field1ID, input.Field2ID, input.Value1, input.Value2)
	if err != nil {
		return nil, err
	}
	// an omitted combination pattern keeps the rule's {0}-{1} default
	pattern := input.CombinationPattern
	if pattern == "" {
		pattern = rule.CombinationPattern
	}
	if err := rule.SetPattern(pattern, input.RegexPattern); err != nil {
		return nil, err
	}
	if input.ProductID != nil {
		if _, err := s.products.FindByID(ctx, *input.ProductID); err != nil {
			return nil, err
		}
		rule.AssignProduct(input.ProductID)
	}

	if err := config.AddRule(rule); err != nil {
		return nil, err
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return nil, err
	}

	logger.WithLogger(ctx, s.log).Info("combination rule added",
		zap.String("config_id", configID.String()),
		zap.String("rule_id", rule.ID.String()))
	return rule, nil
}

// AssignRuleProduct sets or clears the product a rule resolves to
func (s *ConfigService) AssignRuleProduct(ctx context.Context, configID, ruleID uuid.UUID, productID *uuid.UUID) error {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return err
	}
	for i := range config.Rules {
		if config.Rules[i].ID != ruleID {
			continue
		}
		if productID != nil {
			if _, err := s.products.FindByID(ctx, *productID); err != nil {
				return err
			}
		}
		config.Rules[i].AssignProduct(productID)
		return s.configs.Save(ctx, config)
	}
	return shared.ErrNotFound
}

// SupplierLabel renders the configuration's supplier as the operator
// sees it, contacts prefixed with their parent company.
func (s *ConfigService) SupplierLabel(ctx context.Context, config *mapping.ImportConfig) (string, error) {
	supplier, err := s.suppliers.FindByID(ctx, config.SupplierID)
	if err != nil {
		return "", err
	}
	if supplier.ParentID == nil {
		return supplier.DisplayName(nil), nil
	}
	parent, err := s.suppliers.FindByID(ctx, *supplier.ParentID)
	if err != nil {
		return "", err
	}
	return supplier.DisplayName(parent), nil
}

// ReadHeaders parses only the header row of a supplier file
func ReadHeaders(fileName string, data []byte) ([]string, error) {
	parser, err := fileparse.NewParser(fileparse.SniffType(fileName, data), data)
	if err != nil {
		return nil, err
	}
	defer parser.Close()
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	return parser.Headers(), nil
}
