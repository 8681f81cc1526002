package scoring

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/models"
)

// Scorer maps a customer profile to a churn risk assessment.
// The rule table scorer and the model-backed predictor both implement it.
type Scorer interface {
	Assess(profile models.CustomerProfile) (*RiskAssessment, error)
}

// RiskFactor is a triggered, human-readable risk condition
type RiskFactor struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
}

// Contribution records which tier of a rule fired and what it added
type Contribution struct {
	Factor    string  `json:"factor" yaml:"factor"`
	Condition string  `json:"condition" yaml:"condition"`
	Weight    float64 `json:"weight" yaml:"weight"`
}

// RiskAssessment is the result of scoring one profile
type RiskAssessment struct {
	Source           string         `json:"source" yaml:"source"`
	RawScore         float64        `json:"raw_score" yaml:"raw_score"`
	ChurnProbability float64        `json:"churn_probability" yaml:"churn_probability"`
	WillChurn        bool           `json:"will_churn" yaml:"will_churn"`
	TriggeredFactors []RiskFactor   `json:"triggered_factors" yaml:"triggered_factors"`
	Breakdown        []Contribution `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

type compiledTier struct {
	match     predicate
	condition string
	weight    decimal.Decimal
}

type compiledRule struct {
	factor string
	tiers  []compiledTier
}

type compiledFlag struct {
	match  predicate
	factor RiskFactor
}

type compiledRuleSet struct {
	rules     []compiledRule
	flags     []compiledFlag
	floor     decimal.Decimal
	ceiling   decimal.Decimal
	threshold decimal.Decimal
}

func compileRuleSet(rs RuleSet) (*compiledRuleSet, error) {
	invalid := func(format string, args ...interface{}) error {
		return errors.InvalidRuleSet(fmt.Sprintf("rule set %q is invalid", rs.ID), nil).
			WithDetails(fmt.Sprintf(format, args...)).
			WithOperation("CompileRuleSet")
	}

	if rs.ID == "" {
		return nil, invalid("id is required")
	}
	if !(rs.Floor >= 0 && rs.Floor <= rs.Ceiling && rs.Ceiling <= 1) {
		return nil, invalid("bounds must satisfy 0 <= floor <= ceiling <= 1, got floor=%v ceiling=%v", rs.Floor, rs.Ceiling)
	}
	if !(rs.Threshold >= 0 && rs.Threshold <= 1) {
		return nil, invalid("threshold must be within [0, 1], got %v", rs.Threshold)
	}

	compiled := &compiledRuleSet{
		floor:     decimal.NewFromFloat(rs.Floor),
		ceiling:   decimal.NewFromFloat(rs.Ceiling),
		threshold: decimal.NewFromFloat(rs.Threshold),
	}

	for i, rule := range rs.Rules {
		if len(rule.Tiers) == 0 {
			return nil, invalid("scoring rule %d (%s) has no tiers", i, rule.Factor)
		}
		cr := compiledRule{factor: rule.Factor}
		if cr.factor == "" {
			cr.factor = string(rule.Tiers[0].Field)
		}
		for j, tier := range rule.Tiers {
			match, err := tier.Condition.compile()
			if err != nil {
				return nil, invalid("scoring rule %d (%s) tier %d: %v", i, cr.factor, j, err)
			}
			if _, err := toFloat(tier.Weight); err != nil {
				return nil, invalid("scoring rule %d (%s) tier %d: weight %v", i, cr.factor, j, err)
			}
			cr.tiers = append(cr.tiers, compiledTier{
				match:     match,
				condition: tier.Condition.String(),
				weight:    decimal.NewFromFloat(tier.Weight),
			})
		}
		compiled.rules = append(compiled.rules, cr)
	}

	for i, flag := range rs.Flags {
		match, err := flag.Condition.compile()
		if err != nil {
			return nil, invalid("risk flag %d (%s): %v", i, flag.Key, err)
		}
		factor := RiskFactor{Key: flag.Key, Label: flag.Label, Explanation: flag.Explanation}
		if factor.Key == "" {
			factor.Key = string(flag.Field)
		}
		if factor.Label == "" {
			factor.Label = fieldLabel(flag.Field)
		}
		compiled.flags = append(compiled.flags, compiledFlag{match: match, factor: factor})
	}

	return compiled, nil
}

// RuleScorer evaluates a compiled RuleSet. It is immutable and safe for concurrent use.
type RuleScorer struct {
	ruleSet  RuleSet
	compiled *compiledRuleSet
}

// NewRuleScorer compiles the rule set, failing with INVALID_RULE_SET if any condition is malformed
func NewRuleScorer(rs RuleSet) (*RuleScorer, error) {
	compiled, err := compileRuleSet(rs)
	if err != nil {
		return nil, err
	}
	return &RuleScorer{ruleSet: rs, compiled: compiled}, nil
}

// RuleSet returns the table this scorer was built from
func (s *RuleScorer) RuleSet() RuleSet {
	return s.ruleSet
}

// Assess scores the profile against the rule table
func (s *RuleScorer) Assess(profile models.CustomerProfile) (*RiskAssessment, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	total := decimal.Zero
	breakdown := make([]Contribution, 0, len(s.compiled.rules))
	for _, rule := range s.compiled.rules {
		for _, tier := range rule.tiers {
			if tier.match(profile) {
				total = total.Add(tier.weight)
				breakdown = append(breakdown, Contribution{
					Factor:    rule.factor,
					Condition: tier.condition,
					Weight:    tier.weight.InexactFloat64(),
				})
				break
			}
		}
	}

	probability := decimal.Max(s.compiled.floor, decimal.Min(s.compiled.ceiling, total))

	return &RiskAssessment{
		Source:           s.ruleSet.ID,
		RawScore:         total.InexactFloat64(),
		ChurnProbability: probability.InexactFloat64(),
		WillChurn:        probability.GreaterThan(s.compiled.threshold),
		TriggeredFactors: s.triggeredFactors(profile),
		Breakdown:        breakdown,
	}, nil
}

func (s *RuleScorer) triggeredFactors(profile models.CustomerProfile) []RiskFactor {
	return evaluateFlags(s.compiled.flags, profile)
}

func evaluateFlags(flags []compiledFlag, profile models.CustomerProfile) []RiskFactor {
	factors := make([]RiskFactor, 0, len(flags))
	for _, flag := range flags {
		if flag.match(profile) {
			factors = append(factors, flag.factor)
		}
	}
	return factors
}

// FlagEvaluator reports triggered risk flags without scoring.
// The model-backed predictor uses it to explain classifier output.
type FlagEvaluator struct {
	flags []compiledFlag
}

// NewFlagEvaluator compiles flags, failing with INVALID_RULE_SET on a malformed condition
func NewFlagEvaluator(flags []RiskFlag) (*FlagEvaluator, error) {
	compiled, err := compileRuleSet(RuleSet{ID: "flags", Flags: flags, Ceiling: 1})
	if err != nil {
		return nil, err
	}
	return &FlagEvaluator{flags: compiled.flags}, nil
}

// Evaluate returns the flags that hold for profile, in declaration order
func (e *FlagEvaluator) Evaluate(profile models.CustomerProfile) []RiskFactor {
	return evaluateFlags(e.flags, profile)
}
