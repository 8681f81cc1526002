package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/models"
)

const retentionYAML = `rule_sets:
  - id: retention
    name: Retention desk
    scoring_rules:
      - factor: tenure
        tiers:
          - field: tenure
            operator: less_than_or_equal
            value: 1
            weight: 0.4
      - factor: geography
        tiers:
          - field: geography
            operator: in
            value: [Germany, Spain]
            weight: 0.2
    risk_flags:
      - key: new_customer
        field: tenure
        operator: less_than_or_equal
        value: 1
        label: New customer
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRuleSetsFile_YAML(t *testing.T) {
	sets, err := LoadRuleSetsFile(writeFile(t, "rules.yaml", retentionYAML))
	require.NoError(t, err)
	require.Len(t, sets, 1)

	rs := sets[0]
	assert.Equal(t, "retention", rs.ID)
	assert.Equal(t, 1, rs.Version)
	assert.Equal(t, DefaultFloor, rs.Floor)
	assert.Equal(t, DefaultCeiling, rs.Ceiling)
	assert.Equal(t, DefaultThreshold, rs.Threshold)

	scorer, err := NewRuleScorer(rs)
	require.NoError(t, err)

	p := models.DefaultProfile()
	p.Tenure = 0
	p.Geography = models.GeographyGermany
	result, err := scorer.Assess(p)
	require.NoError(t, err)
	assert.InDelta(t, 0.6, result.ChurnProbability, 1e-12)
	assert.True(t, result.WillChurn)
	require.Len(t, result.TriggeredFactors, 1)
	assert.Equal(t, "New customer", result.TriggeredFactors[0].Label)
}

func TestLoadRuleSetsFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"unknown key", "bad.yaml", "rule_sets:\n  - id: x\n    weights: []\n"},
		{"empty document", "empty.yml", "rule_sets: []\n"},
		{"bad geography", "geo.json", `{"rule_sets":[{"id":"x","scoring_rules":[{"factor":"g","tiers":[{"field":"geography","operator":"equals","value":"Italy","weight":0.1}]}]}]}`},
		{"duplicate id", "dup.json", `{"rule_sets":[{"id":"x"},{"id":"x"}]}`},
		{"unsupported extension", "rules.toml", "id = 'x'"},
		{"malformed json", "broken.json", `{"rule_sets":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadRuleSetsFile(writeFile(t, tt.file, tt.content))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRuleSet), "got %v", err)
		})
	}

	_, err := LoadRuleSetsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRuleSet))
}

func TestRulesJSON_LoadRuleSetFromJSON(t *testing.T) {
	original := StandardRuleSet()
	rulesJSON, err := original.RulesJSON()
	require.NoError(t, err)

	loaded, err := LoadRuleSetFromJSON(original.ID, original.Name, original.Description, 3, rulesJSON)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Version)

	want, err := NewRuleScorer(original)
	require.NoError(t, err)
	got, err := NewRuleScorer(*loaded)
	require.NoError(t, err)

	p := profile(50, 1, 150000, false, models.GeographyGermany, 450, models.GenderFemale)
	wantResult, err := want.Assess(p)
	require.NoError(t, err)
	gotResult, err := got.Assess(p)
	require.NoError(t, err)
	assert.Equal(t, wantResult, gotResult)

	_, err = LoadRuleSetFromJSON("broken", "Broken", "", 1, []byte("{"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRuleSet))
}

func TestMarshalRuleSetsYAML_RoundTripsThroughLoader(t *testing.T) {
	data, err := MarshalRuleSetsYAML(DefaultRuleSets())
	require.NoError(t, err)

	sets, err := LoadRuleSetsFile(writeFile(t, "export.yaml", string(data)))
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, RuleSetStandard, sets[0].ID)
	assert.Equal(t, RuleSetMobile, sets[1].ID)
	assert.Len(t, sets[0].Flags, 6)
}

func TestMergeRuleSets(t *testing.T) {
	override := MobileRuleSet()
	override.Version = 2
	extra := RuleSet{ID: "retention"}

	merged := MergeRuleSets(DefaultRuleSets(), []RuleSet{override}, []RuleSet{extra})

	require.Len(t, merged, 3)
	assert.Equal(t, RuleSetStandard, merged[0].ID)
	assert.Equal(t, RuleSetMobile, merged[1].ID)
	assert.Equal(t, 2, merged[1].Version)
	assert.Equal(t, "retention", merged[2].ID)
}

func TestParseRuleSets_Formats(t *testing.T) {
	doc := `{"rule_sets":[{"id":"tiny","name":"Tiny","version":1,"scoring_rules":[{"factor":"age","tiers":[{"field":"age","operator":"greater_than","value":60,"weight":0.5}]}]}]}`

	sets, err := ParseRuleSets([]byte(doc), ".JSON", "inline")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, "tiny", sets[0].ID)

	_, err = ParseRuleSets([]byte(doc), "toml", "inline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported rule-set format")
}

func TestParseRuleSets_ExplicitZeroBounds(t *testing.T) {
	doc := `rule_sets:
  - id: zero
    name: Zero threshold
    floor: 0
    ceiling: 1
    threshold: 0
    scoring_rules:
      - factor: age
        tiers:
          - field: age
            operator: greater_than
            value: 45
            weight: 0.2
`
	sets, err := ParseRuleSets([]byte(doc), "yaml", "inline")
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 0.0, sets[0].Floor)
	assert.Equal(t, 1.0, sets[0].Ceiling)
	assert.Equal(t, 0.0, sets[0].Threshold)

	scorer, err := NewRuleScorer(sets[0])
	require.NoError(t, err)

	result, err := scorer.Assess(profile(50, 2, 0, true, models.GeographyFrance, 700, models.GenderMale))
	require.NoError(t, err)
	assert.Equal(t, 0.2, result.ChurnProbability)
	assert.True(t, result.WillChurn)

	result, err = scorer.Assess(profile(30, 2, 0, true, models.GeographyFrance, 700, models.GenderMale))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.ChurnProbability)
	assert.False(t, result.WillChurn)
}

func TestParseRuleSets_PartialBounds(t *testing.T) {
	doc := `{"rule_sets":[{"id":"partial","floor":0,"scoring_rules":[{"factor":"age","tiers":[{"field":"age","operator":"greater_than","value":45,"weight":0.2}]}]}]}`

	sets, err := ParseRuleSets([]byte(doc), "json", "inline")
	require.NoError(t, err)
	assert.Equal(t, 0.0, sets[0].Floor)
	assert.Equal(t, DefaultCeiling, sets[0].Ceiling)
	assert.Equal(t, DefaultThreshold, sets[0].Threshold)
}

func TestLoadRuleSetFromJSON_ExplicitZeroThreshold(t *testing.T) {
	rulesJSON := []byte(`{"scoring_rules":[{"factor":"age","tiers":[{"field":"age","operator":"greater_than","value":45,"weight":0.2}]}],"floor":0,"ceiling":1,"threshold":0}`)

	rs, err := LoadRuleSetFromJSON("zero", "Zero", "", 1, rulesJSON)
	require.NoError(t, err)
	assert.Equal(t, 0.0, rs.Threshold)
	assert.Equal(t, 0.0, rs.Floor)
	assert.Equal(t, 1.0, rs.Ceiling)

	rs, err = LoadRuleSetFromJSON("defaults", "Defaults", "", 0, []byte(`{"scoring_rules":[]}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultThreshold, rs.Threshold)
	assert.Equal(t, DefaultFloor, rs.Floor)
	assert.Equal(t, 1, rs.Version)
}
