package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/ajharbinger/churnguard/internal/models"
)

// Field names a CustomerProfile attribute a condition can test
type Field string

const (
	FieldAge             Field = "age"
	FieldGender          Field = "gender"
	FieldCreditScore     Field = "credit_score"
	FieldBalance         Field = "balance"
	FieldEstimatedSalary Field = "estimated_salary"
	FieldHasCrCard       Field = "has_cr_card"
	FieldTenure          Field = "tenure"
	FieldNumOfProducts   Field = "num_of_products"
	FieldIsActiveMember  Field = "is_active_member"
	FieldGeography       Field = "geography"
)

// Operator is a comparison applied to a field
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "not_equals"
	OpGreaterThan        Operator = "greater_than"
	OpGreaterThanOrEqual Operator = "greater_than_or_equal"
	OpLessThan           Operator = "less_than"
	OpLessThanOrEqual    Operator = "less_than_or_equal"
	OpIsTrue             Operator = "is_true"
	OpIsFalse            Operator = "is_false"
	OpIn                 Operator = "in"
)

var operatorSymbols = map[Operator]string{
	OpEquals:             "==",
	OpNotEquals:          "!=",
	OpGreaterThan:        ">",
	OpGreaterThanOrEqual: ">=",
	OpLessThan:           "<",
	OpLessThanOrEqual:    "<=",
	OpIn:                 "in",
}

type fieldKind int

const (
	kindNumeric fieldKind = iota
	kindBool
	kindCategory
)

var fieldKinds = map[Field]fieldKind{
	FieldAge:             kindNumeric,
	FieldCreditScore:     kindNumeric,
	FieldBalance:         kindNumeric,
	FieldEstimatedSalary: kindNumeric,
	FieldTenure:          kindNumeric,
	FieldNumOfProducts:   kindNumeric,
	FieldHasCrCard:       kindBool,
	FieldIsActiveMember:  kindBool,
	FieldGender:          kindCategory,
	FieldGeography:       kindCategory,
}

// Condition is a single threshold or equality test on a profile field
type Condition struct {
	Field    Field       `json:"field" yaml:"field"`
	Operator Operator    `json:"operator" yaml:"operator"`
	Value    interface{} `json:"value,omitempty" yaml:"value,omitempty"`
}

// String renders the condition for breakdowns, e.g. "age > 45"
func (c Condition) String() string {
	switch c.Operator {
	case OpIsTrue:
		return fmt.Sprintf("%s is true", c.Field)
	case OpIsFalse:
		return fmt.Sprintf("%s is false", c.Field)
	}
	if sym, ok := operatorSymbols[c.Operator]; ok {
		return fmt.Sprintf("%s %s %v", c.Field, sym, c.Value)
	}
	return fmt.Sprintf("%s %s %v", c.Field, c.Operator, c.Value)
}

// Tier is one weighted branch of a scoring rule
type Tier struct {
	Condition `yaml:",inline"`
	Weight    float64 `json:"weight" yaml:"weight"`
}

// ScoringRule contributes the weight of its first matching tier
type ScoringRule struct {
	Factor      string `json:"factor" yaml:"factor"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Tiers       []Tier `json:"tiers" yaml:"tiers"`
}

// RiskFlag labels a condition shown to the user when it holds
type RiskFlag struct {
	Key         string `json:"key" yaml:"key"`
	Condition   `yaml:",inline"`
	Label       string `json:"label" yaml:"label"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Clamp bounds and churn threshold applied when a rule set leaves them unset
const (
	DefaultFloor     = 0.05
	DefaultCeiling   = 0.95
	DefaultThreshold = 0.5
)

// RuleSet is a complete, data-driven churn scoring table
type RuleSet struct {
	ID          string        `json:"id" yaml:"id"`
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Version     int           `json:"version" yaml:"version"`
	Rules       []ScoringRule `json:"scoring_rules" yaml:"scoring_rules"`
	Flags       []RiskFlag    `json:"risk_flags" yaml:"risk_flags"`
	Floor       float64       `json:"floor" yaml:"floor"`
	Ceiling     float64       `json:"ceiling" yaml:"ceiling"`
	Threshold   float64       `json:"threshold" yaml:"threshold"`
}

// Validate compiles every condition and checks the bounds
func (rs RuleSet) Validate() error {
	_, err := compileRuleSet(rs)
	return err
}

type predicate func(models.CustomerProfile) bool

func (c Condition) compile() (predicate, error) {
	kind, ok := fieldKinds[c.Field]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", c.Field)
	}

	switch kind {
	case kindNumeric:
		return c.compileNumeric()
	case kindBool:
		return c.compileBool()
	default:
		return c.compileCategory()
	}
}

func (c Condition) compileNumeric() (predicate, error) {
	get := numericGetter(c.Field)

	if c.Operator == OpIn {
		values, err := toFloatSlice(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Field, err)
		}
		return func(p models.CustomerProfile) bool {
			actual := get(p)
			for _, v := range values {
				if actual == v {
					return true
				}
			}
			return false
		}, nil
	}

	expected, err := toFloat(c.Value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Field, err)
	}

	var cmp func(a, b float64) bool
	switch c.Operator {
	case OpEquals:
		cmp = func(a, b float64) bool { return a == b }
	case OpNotEquals:
		cmp = func(a, b float64) bool { return a != b }
	case OpGreaterThan:
		cmp = func(a, b float64) bool { return a > b }
	case OpGreaterThanOrEqual:
		cmp = func(a, b float64) bool { return a >= b }
	case OpLessThan:
		cmp = func(a, b float64) bool { return a < b }
	case OpLessThanOrEqual:
		cmp = func(a, b float64) bool { return a <= b }
	default:
		return nil, fmt.Errorf("operator %q not supported on numeric field %q", c.Operator, c.Field)
	}

	return func(p models.CustomerProfile) bool { return cmp(get(p), expected) }, nil
}

func (c Condition) compileBool() (predicate, error) {
	get := func(p models.CustomerProfile) bool { return p.IsActiveMember }
	if c.Field == FieldHasCrCard {
		get = func(p models.CustomerProfile) bool { return p.HasCrCard }
	}

	switch c.Operator {
	case OpIsTrue:
		return get, nil
	case OpIsFalse:
		return func(p models.CustomerProfile) bool { return !get(p) }, nil
	case OpEquals:
		expected, ok := c.Value.(bool)
		if !ok {
			return nil, fmt.Errorf("%s: value %v is not a boolean", c.Field, c.Value)
		}
		return func(p models.CustomerProfile) bool { return get(p) == expected }, nil
	default:
		return nil, fmt.Errorf("operator %q not supported on boolean field %q", c.Operator, c.Field)
	}
}

func (c Condition) compileCategory() (predicate, error) {
	var raw []string
	switch c.Operator {
	case OpEquals, OpNotEquals:
		s, ok := c.Value.(string)
		if !ok {
			return nil, fmt.Errorf("%s: value %v is not a string", c.Field, c.Value)
		}
		raw = []string{s}
	case OpIn:
		values, err := toStringSlice(c.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.Field, err)
		}
		raw = values
	default:
		return nil, fmt.Errorf("operator %q not supported on categorical field %q", c.Operator, c.Field)
	}

	// Category values are parsed into the closed enums so a typo fails at load time.
	var member func(models.CustomerProfile) bool
	if c.Field == FieldGender {
		set := make(map[models.Gender]bool, len(raw))
		for _, s := range raw {
			g, err := models.ParseGender(s)
			if err != nil {
				return nil, err
			}
			set[g] = true
		}
		member = func(p models.CustomerProfile) bool { return set[p.Gender] }
	} else {
		set := make(map[models.Geography]bool, len(raw))
		for _, s := range raw {
			g, err := models.ParseGeography(s)
			if err != nil {
				return nil, err
			}
			set[g] = true
		}
		member = func(p models.CustomerProfile) bool { return set[p.Geography] }
	}

	if c.Operator == OpNotEquals {
		return func(p models.CustomerProfile) bool { return !member(p) }, nil
	}
	return member, nil
}

func numericGetter(field Field) func(models.CustomerProfile) float64 {
	switch field {
	case FieldAge:
		return func(p models.CustomerProfile) float64 { return float64(p.Age) }
	case FieldCreditScore:
		return func(p models.CustomerProfile) float64 { return float64(p.CreditScore) }
	case FieldBalance:
		return func(p models.CustomerProfile) float64 { return p.Balance }
	case FieldEstimatedSalary:
		return func(p models.CustomerProfile) float64 { return p.EstimatedSalary }
	case FieldTenure:
		return func(p models.CustomerProfile) float64 { return float64(p.Tenure) }
	default:
		return func(p models.CustomerProfile) float64 { return float64(p.NumOfProducts) }
	}
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("value %v is not finite", n)
		}
		return n, nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("value %v (%T) is not a number", v, v)
	}
}

func toFloatSlice(v interface{}) ([]float64, error) {
	switch typed := v.(type) {
	case []float64:
		if len(typed) > 0 {
			return typed, nil
		}
	case []int:
		out := make([]float64, 0, len(typed))
		for _, n := range typed {
			out = append(out, float64(n))
		}
		if len(out) > 0 {
			return out, nil
		}
	}

	items, ok := v.([]interface{})
	if !ok || len(items) == 0 {
		return nil, fmt.Errorf("value %v is not a non-empty list", v)
	}
	out := make([]float64, 0, len(items))
	for _, item := range items {
		f, err := toFloat(item)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func toStringSlice(v interface{}) ([]string, error) {
	switch items := v.(type) {
	case []string:
		if len(items) > 0 {
			return items, nil
		}
	case []interface{}:
		out := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("list item %v is not a string", item)
			}
			out = append(out, s)
		}
		if len(out) > 0 {
			return out, nil
		}
	}
	return nil, fmt.Errorf("value %v is not a non-empty list", v)
}

// fieldLabel turns "num_of_products" into "Num Of Products" for fallback labels
func fieldLabel(f Field) string {
	words := strings.Split(string(f), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
