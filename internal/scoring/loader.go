package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajharbinger/churnguard/internal/errors"
)

// ruleSetDocument is the on-disk layout of a rule-set file
type ruleSetDocument struct {
	RuleSets []RuleSet `json:"rule_sets" yaml:"rule_sets"`
}

// sourceDocument is ruleSetDocument as decoded, with optional bounds
type sourceDocument struct {
	RuleSets []ruleSetSource `json:"rule_sets" yaml:"rule_sets"`
}

// ruleSetSource is a decoded RuleSet. Bounds are pointers so an explicit 0 is kept
// and only missing keys take the defaults.
type ruleSetSource struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Version     int           `json:"version" yaml:"version"`
	Rules       []ScoringRule `json:"scoring_rules" yaml:"scoring_rules"`
	Flags       []RiskFlag    `json:"risk_flags" yaml:"risk_flags"`
	Floor       *float64      `json:"floor" yaml:"floor"`
	Ceiling     *float64      `json:"ceiling" yaml:"ceiling"`
	Threshold   *float64      `json:"threshold" yaml:"threshold"`
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// ruleSet fills the keys the source left out
func (s ruleSetSource) ruleSet() RuleSet {
	rs := RuleSet{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Version:     s.Version,
		Rules:       s.Rules,
		Flags:       s.Flags,
		Floor:       valueOr(s.Floor, DefaultFloor),
		Ceiling:     valueOr(s.Ceiling, DefaultCeiling),
		Threshold:   valueOr(s.Threshold, DefaultThreshold),
	}
	if rs.Version == 0 {
		rs.Version = 1
	}
	return rs
}

// LoadRuleSetFromJSON parses the rules column of a stored rule set
func LoadRuleSetFromJSON(id, name, description string, version int, rulesJSON []byte) (*RuleSet, error) {
	var src ruleSetSource
	if err := json.Unmarshal(rulesJSON, &src); err != nil {
		return nil, errors.InvalidRuleSet(fmt.Sprintf("failed to parse rules JSON for %q", id), err).
			WithOperation("LoadRuleSetFromJSON")
	}

	src.ID = id
	src.Name = name
	src.Description = description
	src.Version = version
	rs := src.ruleSet()

	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// RulesJSON encodes the table part of a rule set for storage
func (rs RuleSet) RulesJSON() ([]byte, error) {
	return json.Marshal(struct {
		Rules     []ScoringRule `json:"scoring_rules"`
		Flags     []RiskFlag    `json:"risk_flags"`
		Floor     float64       `json:"floor"`
		Ceiling   float64       `json:"ceiling"`
		Threshold float64       `json:"threshold"`
	}{rs.Rules, rs.Flags, rs.Floor, rs.Ceiling, rs.Threshold})
}

// LoadRuleSetsFile reads a YAML (.yaml, .yml) or JSON (.json) rule-set file
func LoadRuleSetsFile(path string) ([]RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.InvalidRuleSet("failed to read rule-set file", err).WithDetails(path)
	}
	return ParseRuleSets(data, filepath.Ext(path), path)
}

// ParseRuleSets decodes a rule-set document. format is "json", "yaml" or "yml", with or without a leading dot;
// source names the document in errors.
func ParseRuleSets(data []byte, format, source string) ([]RuleSet, error) {
	var doc sourceDocument
	var err error
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "json":
		err = json.Unmarshal(data, &doc)
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
	default:
		return nil, errors.InvalidRuleSet("unsupported rule-set format", nil).WithDetails(source)
	}
	if err != nil {
		return nil, errors.InvalidRuleSet("failed to parse rule-set document", err).WithDetails(source)
	}
	if len(doc.RuleSets) == 0 {
		return nil, errors.InvalidRuleSet("rule-set document defines no rule sets", nil).WithDetails(source)
	}

	sets := make([]RuleSet, 0, len(doc.RuleSets))
	seen := make(map[string]bool, len(doc.RuleSets))
	for _, src := range doc.RuleSets {
		rs := src.ruleSet()
		if err := rs.Validate(); err != nil {
			return nil, err
		}
		if seen[rs.ID] {
			return nil, errors.InvalidRuleSet(fmt.Sprintf("duplicate rule set %q", rs.ID), nil).WithDetails(source)
		}
		seen[rs.ID] = true
		sets = append(sets, rs)
	}
	return sets, nil
}

// MarshalRuleSetsYAML renders rule sets in the file layout LoadRuleSetsFile reads
func MarshalRuleSetsYAML(sets []RuleSet) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ruleSetDocument{RuleSets: sets}); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MergeRuleSets overlays later sources onto base by ID. Replaced sets keep their position; new IDs are appended.
func MergeRuleSets(base []RuleSet, overlays ...[]RuleSet) []RuleSet {
	merged := make([]RuleSet, len(base))
	copy(merged, base)

	index := make(map[string]int, len(merged))
	for i, rs := range merged {
		index[rs.ID] = i
	}

	for _, overlay := range overlays {
		for _, rs := range overlay {
			if i, ok := index[rs.ID]; ok {
				merged[i] = rs
				continue
			}
			index[rs.ID] = len(merged)
			merged = append(merged, rs)
		}
	}
	return merged
}
