package mapping

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// ColumnMapping declares how one named source column in a supplier file
// maps onto one destination attribute. Mappings are owned by an
// ImportConfig and referenced (never owned) by combination rules.
type ColumnMapping struct {
	shared.BaseEntity
	ConfigID        uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceColumn    string    `gorm:"type:varchar(200);not null"`
	Destination     Field     `gorm:"type:varchar(50);not null"`
	CustomFieldName string    `gorm:"type:varchar(100)"`
	Label           string    `gorm:"type:varchar(200);not null"`
	// Position preserves file column order so derived mappings and rule
	// evaluation stay deterministic.
	Position int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ColumnMapping) TableName() string {
	return "import_column_mappings"
}

// NewColumnMapping creates a mapping from a source column to a destination
// field. Custom destinations must already carry a synthetic field name;
// use DeriveFromHeaders for that.
func NewColumnMapping(configID uuid.UUID, sourceColumn string, destination Field) (*ColumnMapping, error) {
	sourceColumn = strings.TrimSpace(sourceColumn)
	if sourceColumn == "" {
		return nil, shared.NewDomainError("INVALID_SOURCE_COLUMN", "Source column cannot be empty")
	}
	if destination != FieldCustom && !destination.IsKnown() {
		return nil, shared.NewDomainError("INVALID_DESTINATION", "Unknown destination field: "+string(destination))
	}

	m := &ColumnMapping{
		BaseEntity:   shared.NewBaseEntity(),
		ConfigID:     configID,
		SourceColumn: sourceColumn,
		Destination:  destination,
	}
	if destination == FieldCustom {
		m.Label = sourceColumn
	} else {
		m.Label = destination.Label()
	}
	return m, nil
}

// IsCustom reports whether the mapping targets a custom extension field
func (m *ColumnMapping) IsCustom() bool {
	return m.Destination == FieldCustom
}

// IsRequired reports whether the mapping targets one of the identifying
// attributes. Required mappings may not be left without a value in a row.
func (m *ColumnMapping) IsRequired() bool {
	return m.Destination.IsIdentifying()
}

// IsReadonly mirrors IsRequired: identifying attributes cannot be
// repointed by an operator once derived.
func (m *ColumnMapping) IsReadonly() bool {
	return m.Destination.IsIdentifying()
}

// SetDestination repoints the mapping at a different destination field.
// Moving to custom derives a synthetic field name from the source column
// and resets the label to the raw source text; moving to a known field
// takes that field's display label unless an explicit label is supplied.
// existingNames holds the synthetic names already taken in the owning
// configuration.
func (m *ColumnMapping) SetDestination(destination Field, label string, existingNames map[string]bool) error {
	if destination != FieldCustom && !destination.IsKnown() {
		return shared.NewDomainError("INVALID_DESTINATION", "Unknown destination field: "+string(destination))
	}

	m.Destination = destination
	if destination == FieldCustom {
		m.CustomFieldName = DeriveCustomFieldName(m.SourceColumn, existingNames)
		m.Label = m.SourceColumn
	} else {
		m.CustomFieldName = ""
		if label != "" {
			m.Label = label
		} else {
			m.Label = destination.Label()
		}
	}
	m.Touch()
	return nil
}

// Validate checks the mapping's own invariants
func (m *ColumnMapping) Validate() error {
	if m.IsCustom() {
		if m.Label == "" {
			return shared.NewDomainError("MISSING_LABEL", "Custom fields must have a label")
		}
		if m.CustomFieldName == "" {
			return shared.NewDomainError("MISSING_FIELD_NAME", "Custom fields must have a field name")
		}
	}
	return nil
}

// DeriveFromHeaders builds one mapping per detected header column,
// matching each header against the known destination attributes and
// falling back to a custom extension field with a synthetic name. Blank
// headers are skipped. Synthetic names are deduplicated against both the
// known attribute names and the names already taken earlier in the same
// header row, so re-deriving from the same file yields the same names.
func DeriveFromHeaders(configID uuid.UUID, headers []string) []*ColumnMapping {
	taken := make(map[string]bool)
	for _, f := range KnownFields() {
		taken[string(f)] = true
	}

	mappings := make([]*ColumnMapping, 0, len(headers))
	seen := make(map[Field]bool)
	for i, header := range headers {
		header = strings.TrimSpace(header)
		if header == "" {
			continue
		}

		destination := MatchHeader(header)
		// Two columns cannot feed the same known attribute; the later one
		// degrades to a custom field so no value is silently dropped.
		if destination != FieldCustom && seen[destination] {
			destination = FieldCustom
		}

		m := &ColumnMapping{
			BaseEntity:   shared.NewBaseEntity(),
			ConfigID:     configID,
			SourceColumn: header,
			Destination:  destination,
			Position:     i,
		}
		if destination == FieldCustom {
			m.CustomFieldName = DeriveCustomFieldName(header, taken)
			taken[m.CustomFieldName] = true
			m.Label = header
		} else {
			seen[destination] = true
			m.Label = destination.Label()
		}
		mappings = append(mappings, m)
	}
	return mappings
}

// DeriveCustomFieldName derives a synthetic extension field name from a
// source column: lower-cased, non-alphanumeric runs collapsed to
// underscores, prefixed with "x_", and deduplicated against taken names
// by numeric suffix.
func DeriveCustomFieldName(sourceColumn string, taken map[string]bool) string {
	var b strings.Builder
	b.WriteString("x_")
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(sourceColumn)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	base := strings.TrimRight(b.String(), "_")
	if base == "x" {
		base = "x_column"
	}

	name := base
	for counter := 1; taken[name]; counter++ {
		name = fmt.Sprintf("%s_%d", base, counter)
	}
	return name
}
