package importer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kubangab/supplier-information-import/internal/domain/mapping"
	"github.com/kubangab/supplier-information-import/internal/domain/shared"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/fileparse"
	"github.com/kubangab/supplier-information-import/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ValuePair is one distinct two-column combination seen in a file
type ValuePair struct {
	Value1 string `json:"value1"`
	Value2 string `json:"value2"`
	Count  int    `json:"count"`
}

// AnalysisReport lists the value combinations of two chosen columns
// that no existing combination rule covers yet.
type AnalysisReport struct {
	Field1ID uuid.UUID   `json:"field1_id"`
	Field2ID uuid.UUID   `json:"field2_id"`
	Column1  string      `json:"column1"`
	Column2  string      `json:"column2"`
	Pairs    []ValuePair `json:"pairs"`
	// Covered counts combinations an existing rule already matches
	Covered int `json:"covered"`
}

// Text renders the report for the operator
func (r *AnalysisReport) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Combinations of %q and %q without a rule:\n", r.Column1, r.Column2)
	for _, p := range r.Pairs {
		fmt.Fprintf(&b, "  %s / %s: %d rows\n", p.Value1, p.Value2, p.Count)
	}
	if r.Covered > 0 {
		fmt.Fprintf(&b, "%d combinations already covered by existing rules\n", r.Covered)
	}
	return b.String()
}

// AnalysisService inspects supplier files to drive semi-automated
// combination rule creation.
type AnalysisService struct {
	configs mapping.ImportConfigRepository
	log     *zap.Logger
}

// NewAnalysisService creates a file analysis service
func NewAnalysisService(configs mapping.ImportConfigRepository, log *zap.Logger) *AnalysisService {
	return &AnalysisService{configs: configs, log: log}
}

// AnalyzeFile counts the distinct value combinations of two mapped
// columns across the file, filtered to combinations no existing rule of
// the configuration matches.
func (s *AnalysisService) AnalyzeFile(ctx context.Context, configID uuid.UUID, fileName string, data []byte, field1ID, field2ID uuid.UUID) (*AnalysisReport, error) {
	if field1ID == field2ID {
		return nil, shared.NewDomainError("SAME_ANALYSIS_COLUMN", "Choose two different columns to analyze")
	}

	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return nil, err
	}
	m1 := config.FindMapping(field1ID)
	m2 := config.FindMapping(field2ID)
	if m1 == nil || m2 == nil {
		return nil, shared.NewDomainError("UNKNOWN_ANALYSIS_COLUMN", "Both analysis columns must be mappings of this configuration")
	}

	parser, err := fileparse.NewParser(fileparse.SniffType(fileName, data), data)
	if err != nil {
		return nil, err
	}
	defer parser.Close()
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}

	type pairKey struct{ v1, v2 string }
	counts := make(map[pairKey]int)
	order := make([]pairKey, 0)
	for {
		row, err := parser.ReadRow()
		if err != nil {
			break
		}
		if row.IsEmpty() {
			continue
		}
		v1 := strings.TrimSpace(row.Get(m1.SourceColumn))
		v2 := strings.TrimSpace(row.Get(m2.SourceColumn))
		if v1 == "" && v2 == "" {
			continue
		}
		key := pairKey{v1, v2}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}

	report := &AnalysisReport{
		Field1ID: field1ID,
		Field2ID: field2ID,
		Column1:  m1.SourceColumn,
		Column2:  m2.SourceColumn,
	}
	for _, key := range order {
		if ruleCovers(config, field1ID, field2ID, key.v1, key.v2) {
			report.Covered++
			continue
		}
		report.Pairs = append(report.Pairs, ValuePair{Value1: key.v1, Value2: key.v2, Count: counts[key]})
	}
	sort.SliceStable(report.Pairs, func(i, j int) bool {
		return report.Pairs[i].Count > report.Pairs[j].Count
	})

	logger.WithLogger(ctx, s.log).Info("file analyzed",
		zap.String("config_id", configID.String()),
		zap.String("file_name", fileName),
		zap.Int("uncovered_pairs", len(report.Pairs)),
		zap.Int("covered_pairs", report.Covered))
	return report, nil
}

// CreateRulesFromAnalysis turns selected value pairs into product-less
// combination rules awaiting a manual product assignment. Pairs an
// existing rule already covers are skipped.
func (s *AnalysisService) CreateRulesFromAnalysis(ctx context.Context, configID uuid.UUID, field1ID, field2ID uuid.UUID, pairs []ValuePair) (int, error) {
	config, err := s.configs.FindByID(ctx, configID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, pair := range pairs {
		if ruleCovers(config, field1ID, field2ID, pair.Value1, pair.Value2) {
			continue
		}
		name := fmt.Sprintf("%s / %s", pair.Value1, pair.Value2)
		rule, err := mapping.NewCombinationRule(configID, name, field1ID, field2ID, pair.Value1, pair.Value2)
		if err != nil {
			return created, err
		}
		if err := config.AddRule(rule); err != nil {
			return created, err
		}
		created++
	}
	if created == 0 {
		return 0, nil
	}
	if err := s.configs.Save(ctx, config); err != nil {
		return 0, err
	}

	logger.WithLogger(ctx, s.log).Info("rules created from analysis",
		zap.String("config_id", configID.String()),
		zap.Int("created", created))
	return created, nil
}

// ruleCovers reports whether an existing rule on the same field pair
// already matches the value combination.
func ruleCovers(config *mapping.ImportConfig, field1ID, field2ID uuid.UUID, v1, v2 string) bool {
	for i := range config.Rules {
		rule := &config.Rules[i]
		if rule.Field1ID == field1ID && rule.Field2ID == field2ID && rule.Matches(v1, v2) {
			return true
		}
		if rule.Field1ID == field2ID && rule.Field2ID == field1ID && rule.Matches(v2, v1) {
			return true
		}
	}
	return false
}
