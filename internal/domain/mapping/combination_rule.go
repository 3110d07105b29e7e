package mapping

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
)

// CombinationRule maps a pair of column values onto a product. Rules are
// evaluated in Position order before any catalog lookup, so they can
// override whatever a code search would have found.
type CombinationRule struct {
	shared.BaseEntity
	ConfigID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(200);not null"`
	// Field1ID and Field2ID reference two distinct column mappings of
	// the owning configuration.
	Field1ID uuid.UUID  `gorm:"type:uuid;not null"`
	Field2ID uuid.UUID  `gorm:"type:uuid;not null"`
	Value1   string     `gorm:"type:varchar(200);not null"`
	Value2   string     `gorm:"type:varchar(200);not null"`
	// CombinationPattern renders the matched pair into a supplier product
	// code. "{0}" and "{1}" expand to the two matched values.
	CombinationPattern string `gorm:"type:varchar(500)"`
	// RegexPattern optionally post-processes the rendered combination;
	// the first capture group (or the whole match) becomes the code.
	RegexPattern string     `gorm:"type:varchar(500)"`
	ProductID    *uuid.UUID `gorm:"type:uuid;index"`
	Position     int        `gorm:"not null;default:0"`
	UsageCount   int        `gorm:"not null;default:0"`
	// AppliedSerials is a JSON-encoded set of serial numbers the rule has
	// already been counted for, keeping UsageCount stable across
	// re-imports of the same file.
	AppliedSerials string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CombinationRule) TableName() string {
	return "import_combination_rules"
}

const (
	ruleWildcard = "*"

	// defaultCombinationPattern joins the two matched values with a dash
	defaultCombinationPattern = "{0}-{1}"
)

// NewCombinationRule creates a rule over two mappings of a configuration
func NewCombinationRule(configID uuid.UUID, name string, field1ID, field2ID uuid.UUID, value1, value2 string) (*CombinationRule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_RULE_NAME", "Rule name cannot be empty")
	}
	if field1ID == field2ID {
		return nil, shared.NewDomainError("DUPLICATE_RULE_FIELDS", "A rule must reference two different columns")
	}

	return &CombinationRule{
		BaseEntity:         shared.NewBaseEntity(),
		ConfigID:           configID,
		Name:               name,
		Field1ID:           field1ID,
		Field2ID:           field2ID,
		Value1:             strings.TrimSpace(value1),
		Value2:             strings.TrimSpace(value2),
		CombinationPattern: defaultCombinationPattern,
	}, nil
}

// SetPattern sets the combination and regex patterns. The combination
// pattern must reference both matched values; the regex is compiled
// eagerly. Either way a broken pattern is rejected at configuration time
// rather than mid-import.
func (r *CombinationRule) SetPattern(combination, regex string) error {
	combination = strings.TrimSpace(combination)
	if !strings.Contains(combination, "{0}") || !strings.Contains(combination, "{1}") {
		return shared.NewDomainError("INVALID_PATTERN", "Combination pattern must contain both {0} and {1}")
	}
	regex = strings.TrimSpace(regex)
	if regex != "" {
		if _, err := regexp.Compile(regex); err != nil {
			return shared.NewDomainError("INVALID_REGEX", fmt.Sprintf("Invalid regex pattern: %v", err))
		}
	}
	r.CombinationPattern = combination
	r.RegexPattern = regex
	r.Touch()
	return nil
}

// AssignProduct links or clears the product the rule resolves to
func (r *CombinationRule) AssignProduct(productID *uuid.UUID) {
	r.ProductID = productID
	r.Touch()
}

// Matches reports whether the rule applies to the given pair of values.
// Comparison is case-insensitive on trimmed values. An empty stored
// value, or "*", matches anything.
func (r *CombinationRule) Matches(value1, value2 string) bool {
	return ruleValueMatches(r.Value1, value1) && ruleValueMatches(r.Value2, value2)
}

func ruleValueMatches(expected, actual string) bool {
	expected = strings.TrimSpace(expected)
	if expected == "" || expected == ruleWildcard {
		return true
	}
	return strings.EqualFold(expected, strings.TrimSpace(actual))
}

// Combine renders the matched pair into a supplier product code using
// the combination pattern and optional regex. fallback is used when the
// rule has no pattern or the regex does not match.
func (r *CombinationRule) Combine(value1, value2, fallback string) string {
	if r.CombinationPattern == "" {
		return fallback
	}

	combined := strings.ReplaceAll(r.CombinationPattern, "{0}", strings.TrimSpace(value1))
	combined = strings.ReplaceAll(combined, "{1}", strings.TrimSpace(value2))

	if r.RegexPattern == "" {
		return combined
	}
	re, err := regexp.Compile(r.RegexPattern)
	if err != nil {
		return fallback
	}
	match := re.FindStringSubmatch(combined)
	if match == nil {
		return fallback
	}
	if len(match) > 1 {
		return match[1]
	}
	return match[0]
}

// MarkSerialApplied records that the rule matched a row with the given
// serial number. The usage counter only advances the first time a serial
// is seen, so re-importing a file leaves the count unchanged. Returns
// true when the counter advanced.
func (r *CombinationRule) MarkSerialApplied(serial string) bool {
	serial = strings.TrimSpace(serial)
	if serial == "" {
		return false
	}

	applied := r.appliedSerialSet()
	if applied[serial] {
		return false
	}
	applied[serial] = true
	r.UsageCount++
	r.storeAppliedSerials(applied)
	r.Touch()
	return true
}

func (r *CombinationRule) appliedSerialSet() map[string]bool {
	set := make(map[string]bool)
	if r.AppliedSerials == "" {
		return set
	}
	var serials []string
	if err := json.Unmarshal([]byte(r.AppliedSerials), &serials); err != nil {
		return set
	}
	for _, s := range serials {
		set[s] = true
	}
	return set
}

func (r *CombinationRule) storeAppliedSerials(set map[string]bool) {
	serials := make([]string, 0, len(set))
	for s := range set {
		serials = append(serials, s)
	}
	data, err := json.Marshal(serials)
	if err != nil {
		return
	}
	r.AppliedSerials = string(data)
}

// Validate checks the rule's invariants against the owning
// configuration's mappings.
func (r *CombinationRule) Validate(mappingIDs map[uuid.UUID]bool) error {
	if r.Field1ID == r.Field2ID {
		return shared.NewDomainError("DUPLICATE_RULE_FIELDS", "A rule must reference two different columns")
	}
	if mappingIDs != nil {
		if !mappingIDs[r.Field1ID] || !mappingIDs[r.Field2ID] {
			return shared.NewDomainError("DANGLING_RULE_FIELD", fmt.Sprintf("Rule %q references a column mapping that no longer exists", r.Name))
		}
	}
	if !strings.Contains(r.CombinationPattern, "{0}") || !strings.Contains(r.CombinationPattern, "{1}") {
		return shared.NewDomainError("INVALID_PATTERN", "Combination pattern must contain both {0} and {1}")
	}
	if r.RegexPattern != "" {
		if _, err := regexp.Compile(r.RegexPattern); err != nil {
			return shared.NewDomainError("INVALID_REGEX", fmt.Sprintf("Invalid regex pattern: %v", err))
		}
	}
	return nil
}
