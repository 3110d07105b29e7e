package mapping

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// FileType identifies the format of the supplier file a configuration parses
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
)

// ImportConfig is the aggregate root for one supplier's file layout: the
// column mappings derived from a sample file plus the combination rules
// evaluated on top of them.
type ImportConfig struct {
	shared.BaseAggregateRoot
	Name       string    `gorm:"type:varchar(200);not null"`
	SupplierID uuid.UUID `gorm:"type:uuid;not null;index"`
	FileType   FileType  `gorm:"type:varchar(20);not null"`
	// SampleFileName is kept for display; the sample content itself is
	// only read once, to derive mappings.
	SampleFileName string `gorm:"type:varchar(300)"`

	Mappings []ColumnMapping   `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE"`
	Rules    []CombinationRule `gorm:"foreignKey:ConfigID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (ImportConfig) TableName() string {
	return "import_configs"
}

// NewImportConfig creates a configuration for a supplier
func NewImportConfig(name string, supplierID uuid.UUID, fileType FileType) (*ImportConfig, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CONFIG_NAME", "Configuration name cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("MISSING_SUPPLIER", "Configuration must belong to a supplier")
	}
	if fileType != FileTypeCSV && fileType != FileTypeExcel {
		return nil, shared.NewDomainError("INVALID_FILE_TYPE", "File type must be csv or excel")
	}

	return &ImportConfig{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		SupplierID:        supplierID,
		FileType:          fileType,
	}, nil
}

// ReplaceMappingsFromHeaders discards the current mappings and derives a
// fresh set from the given header row. Rules referencing mappings that no
// longer exist afterwards are returned so the caller can surface them;
// they are not deleted here because the operator may want to repoint them.
func (c *ImportConfig) ReplaceMappingsFromHeaders(headers []string, sampleFileName string) []CombinationRule {
	derived := DeriveFromHeaders(c.ID, headers)
	c.Mappings = make([]ColumnMapping, 0, len(derived))
	for _, m := range derived {
		c.Mappings = append(c.Mappings, *m)
	}
	c.SampleFileName = strings.TrimSpace(sampleFileName)
	c.Touch()

	valid := c.mappingIDSet()
	var dangling []CombinationRule
	for _, r := range c.Rules {
		if !valid[r.Field1ID] || !valid[r.Field2ID] {
			dangling = append(dangling, r)
		}
	}
	return dangling
}

// EnsureRequiredMappings guarantees the identifying attributes are
// mapped, synthesizing mappings with conventional source column names
// when the sample file did not carry them. Returns the mappings it added.
func (c *ImportConfig) EnsureRequiredMappings() []ColumnMapping {
	present := make(map[Field]bool)
	maxPos := -1
	for _, m := range c.Mappings {
		present[m.Destination] = true
		if m.Position > maxPos {
			maxPos = m.Position
		}
	}

	synthetic := map[Field]string{
		FieldSerialNumber: "SN",
		FieldModelNo:      "MODEL_NO",
	}

	var added []ColumnMapping
	for _, f := range []Field{FieldSerialNumber, FieldModelNo} {
		if present[f] {
			continue
		}
		maxPos++
		m := ColumnMapping{
			BaseEntity:   shared.NewBaseEntity(),
			ConfigID:     c.ID,
			SourceColumn: synthetic[f],
			Destination:  f,
			Label:        f.Label(),
			Position:     maxPos,
		}
		c.Mappings = append(c.Mappings, m)
		added = append(added, m)
	}
	if len(added) > 0 {
		c.Touch()
	}
	return added
}

// FindMapping returns the mapping with the given ID, or nil
func (c *ImportConfig) FindMapping(id uuid.UUID) *ColumnMapping {
	for i := range c.Mappings {
		if c.Mappings[i].ID == id {
			return &c.Mappings[i]
		}
	}
	return nil
}

// MappingForField returns the first mapping targeting the given known
// field, or nil.
func (c *ImportConfig) MappingForField(f Field) *ColumnMapping {
	for i := range c.Mappings {
		if c.Mappings[i].Destination == f {
			return &c.Mappings[i]
		}
	}
	return nil
}

// AddRule appends a combination rule at the end of the evaluation order
func (c *ImportConfig) AddRule(rule *CombinationRule) error {
	if err := rule.Validate(c.mappingIDSet()); err != nil {
		return err
	}
	rule.Position = len(c.Rules)
	c.Rules = append(c.Rules, *rule)
	c.Touch()
	return nil
}

// CustomFieldNames returns the synthetic extension field names currently
// taken by the configuration's custom mappings.
func (c *ImportConfig) CustomFieldNames() map[string]bool {
	taken := make(map[string]bool)
	for _, f := range KnownFields() {
		taken[string(f)] = true
	}
	for _, m := range c.Mappings {
		if m.CustomFieldName != "" {
			taken[m.CustomFieldName] = true
		}
	}
	return taken
}

// ValidateMappings checks the mapping invariants alone: non-custom
// labels must be unique within the configuration. Custom labels mirror
// the raw header text and may repeat. Used after a sample-file change,
// where rules may legitimately dangle until the operator repoints them.
func (c *ImportConfig) ValidateMappings() error {
	labels := make(map[string]string)
	for _, m := range c.Mappings {
		if err := m.Validate(); err != nil {
			return err
		}
		if m.IsCustom() {
			continue
		}
		key := strings.ToLower(m.Label)
		if other, ok := labels[key]; ok {
			return shared.NewDomainError("DUPLICATE_LABEL", fmt.Sprintf("Columns %q and %q map to the same label %q", other, m.SourceColumn, m.Label))
		}
		labels[key] = m.SourceColumn
	}
	return nil
}

// Validate checks the configuration's invariants: mapping labels must be
// unique within the configuration and every rule must reference existing
// mappings.
func (c *ImportConfig) Validate() error {
	if err := c.ValidateMappings(); err != nil {
		return err
	}

	valid := c.mappingIDSet()
	for i := range c.Rules {
		if err := c.Rules[i].Validate(valid); err != nil {
			return err
		}
	}
	return nil
}

func (c *ImportConfig) mappingIDSet() map[uuid.UUID]bool {
	ids := make(map[uuid.UUID]bool, len(c.Mappings))
	for _, m := range c.Mappings {
		ids[m.ID] = true
	}
	return ids
}
