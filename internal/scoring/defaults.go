package scoring

// Built-in rule set identifiers
const (
	RuleSetStandard = "standard"
	RuleSetMobile   = "mobile"
)

func cond(field Field, op Operator, value interface{}) Condition {
	return Condition{Field: field, Operator: op, Value: value}
}

// StandardRuleSet is the two-tier heuristic used by the full dashboard
func StandardRuleSet() RuleSet {
	return RuleSet{
		ID:          RuleSetStandard,
		Name:        "Standard dashboard",
		Description: "Graded weights with two tiers for age, products, balance, geography and credit score",
		Version:     1,
		Rules: []ScoringRule{
			{Factor: "age", Description: "Older customers churn more", Tiers: []Tier{
				{Condition: cond(FieldAge, OpGreaterThan, 45), Weight: 0.30},
				{Condition: cond(FieldAge, OpGreaterThan, 35), Weight: 0.15},
			}},
			{Factor: "num_of_products", Description: "Single-product customers churn most", Tiers: []Tier{
				{Condition: cond(FieldNumOfProducts, OpEquals, 1), Weight: 0.30},
				{Condition: cond(FieldNumOfProducts, OpEquals, 2), Weight: 0.10},
			}},
			{Factor: "balance", Description: "High balances leave more often", Tiers: []Tier{
				{Condition: cond(FieldBalance, OpGreaterThan, 100000), Weight: 0.20},
				{Condition: cond(FieldBalance, OpGreaterThan, 50000), Weight: 0.10},
			}},
			{Factor: "is_active_member", Description: "Inactive members churn more", Tiers: []Tier{
				{Condition: cond(FieldIsActiveMember, OpIsFalse, nil), Weight: 0.20},
			}},
			{Factor: "geography", Description: "Germany has the highest churn rate", Tiers: []Tier{
				{Condition: cond(FieldGeography, OpEquals, "Germany"), Weight: 0.30},
				{Condition: cond(FieldGeography, OpEquals, "Spain"), Weight: 0.10},
			}},
			{Factor: "credit_score", Description: "Low credit scores indicate financial stress", Tiers: []Tier{
				{Condition: cond(FieldCreditScore, OpLessThan, 500), Weight: 0.20},
				{Condition: cond(FieldCreditScore, OpLessThan, 650), Weight: 0.10},
			}},
			{Factor: "gender", Description: "Female customers churn at 25% vs 16%", Tiers: []Tier{
				{Condition: cond(FieldGender, OpEquals, "Female"), Weight: 0.10},
			}},
		},
		Flags: []RiskFlag{
			{Key: "older_customer", Condition: cond(FieldAge, OpGreaterThan, 45), Label: "Older customer", Explanation: "higher churn risk"},
			{Key: "single_product", Condition: cond(FieldNumOfProducts, OpEquals, 1), Label: "Only one product", Explanation: "highest churn risk"},
			{Key: "high_balance", Condition: cond(FieldBalance, OpGreaterThan, 100000), Label: "High balance", Explanation: "increased churn risk"},
			{Key: "inactive_member", Condition: cond(FieldIsActiveMember, OpIsFalse, nil), Label: "Inactive member", Explanation: "higher churn risk"},
			{Key: "german_customer", Condition: cond(FieldGeography, OpEquals, "Germany"), Label: "German customer", Explanation: "32% churn rate"},
			{Key: "female_customer", Condition: cond(FieldGender, OpEquals, "Female"), Label: "Female customer", Explanation: "25% churn rate"},
		},
		Floor:     DefaultFloor,
		Ceiling:   DefaultCeiling,
		Threshold: DefaultThreshold,
	}
}

// MobileRuleSet collapses each factor to a single binary weight
func MobileRuleSet() RuleSet {
	return RuleSet{
		ID:          RuleSetMobile,
		Name:        "Mobile dashboard",
		Description: "Single binary weight per factor, ordered by importance",
		Version:     1,
		Rules: []ScoringRule{
			{Factor: "num_of_products", Tiers: []Tier{{Condition: cond(FieldNumOfProducts, OpEquals, 1), Weight: 0.35}}},
			{Factor: "age", Tiers: []Tier{{Condition: cond(FieldAge, OpGreaterThan, 45), Weight: 0.25}}},
			{Factor: "geography", Tiers: []Tier{{Condition: cond(FieldGeography, OpEquals, "Germany"), Weight: 0.20}}},
			{Factor: "balance", Tiers: []Tier{{Condition: cond(FieldBalance, OpGreaterThan, 100000), Weight: 0.15}}},
			{Factor: "is_active_member", Tiers: []Tier{{Condition: cond(FieldIsActiveMember, OpIsFalse, nil), Weight: 0.15}}},
			{Factor: "credit_score", Tiers: []Tier{{Condition: cond(FieldCreditScore, OpLessThan, 600), Weight: 0.10}}},
			{Factor: "gender", Tiers: []Tier{{Condition: cond(FieldGender, OpEquals, "Female"), Weight: 0.05}}},
		},
		Flags: []RiskFlag{
			{Key: "single_product", Condition: cond(FieldNumOfProducts, OpEquals, 1), Label: "Single Product", Explanation: "Highest churn driver"},
			{Key: "older_customer", Condition: cond(FieldAge, OpGreaterThan, 45), Label: "Age 45+", Explanation: "Older customers churn more"},
			{Key: "german_customer", Condition: cond(FieldGeography, OpEquals, "Germany"), Label: "Germany", Explanation: "32% churn rate"},
			{Key: "high_balance", Condition: cond(FieldBalance, OpGreaterThan, 100000), Label: "High Balance", Explanation: "Wealthier customers leave"},
			{Key: "inactive_member", Condition: cond(FieldIsActiveMember, OpIsFalse, nil), Label: "Inactive", Explanation: "2x higher churn risk"},
			{Key: "low_credit", Condition: cond(FieldCreditScore, OpLessThan, 600), Label: "Low Credit", Explanation: "Financial stress indicator"},
		},
		Floor:     DefaultFloor,
		Ceiling:   DefaultCeiling,
		Threshold: DefaultThreshold,
	}
}

// DefaultRuleSets returns the built-in tables in display order
func DefaultRuleSets() []RuleSet {
	return []RuleSet{StandardRuleSet(), MobileRuleSet()}
}

// ModelRiskFlags are the factors shown next to classifier output
func ModelRiskFlags() []RiskFlag {
	return []RiskFlag{
		{Key: "older_customer", Condition: cond(FieldAge, OpGreaterThan, 45), Label: "Older customer", Explanation: "higher churn risk"},
		{Key: "single_product", Condition: cond(FieldNumOfProducts, OpEquals, 1), Label: "Only one product", Explanation: "higher churn risk"},
		{Key: "high_balance", Condition: cond(FieldBalance, OpGreaterThan, 100000), Label: "High balance", Explanation: "increased churn risk"},
		{Key: "inactive_member", Condition: cond(FieldIsActiveMember, OpIsFalse, nil), Label: "Inactive member", Explanation: "higher churn risk"},
		{Key: "german_customer", Condition: cond(FieldGeography, OpEquals, "Germany"), Label: "German customer", Explanation: "higher churn rate"},
	}
}
