package recommend

import (
	"github.com/ajharbinger/churnguard/internal/models"
)

// Band is the recommendation tier a churn probability falls in
type Band string

const (
	BandCritical  Band = "critical"
	BandProactive Band = "proactive"
	BandMaintain  Band = "maintain"
)

// Probabilities strictly above these pick the band
const (
	CriticalThreshold  = 0.7
	ProactiveThreshold = 0.5
)

// Risk labels shown next to the probability
const (
	RiskLabelHigh = "HIGH RISK"
	RiskLabelLow  = "LOW RISK"
)

// BandFor maps a probability to its band
func BandFor(probability float64) Band {
	switch {
	case probability > CriticalThreshold:
		return BandCritical
	case probability > ProactiveThreshold:
		return BandProactive
	default:
		return BandMaintain
	}
}

// RiskLabel returns the headline risk label for a churn decision
func RiskLabel(willChurn bool) string {
	if willChurn {
		return RiskLabelHigh
	}
	return RiskLabelLow
}

// Recommendation is the heading and action list for one band
type Recommendation struct {
	Band    Band     `json:"band" yaml:"band"`
	Heading string   `json:"heading" yaml:"heading"`
	Actions []string `json:"actions" yaml:"actions"`
}

// QuickAction is a one-tap protocol shown on the mobile dashboard
type QuickAction struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Stat is one headline figure in the mobile stats bar
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Playbook holds all canned text of one dashboard variant. Empty fields are not rendered.
type Playbook struct {
	Variant          models.Variant
	Title            string
	Tagline          string
	About            string
	Drivers          []string
	Performance      []string
	Confidence       string
	SampleProfile    []string
	QuickStats       []Stat
	InstallTips      []string
	Footer           string
	NoFactorsMessage string
	QuickActions     []QuickAction
	bands            map[Band]Recommendation
}

// Recommend returns the band text for a probability. The returned action list is a copy.
func (p *Playbook) Recommend(probability float64) Recommendation {
	rec := p.bands[BandFor(probability)]
	actions := make([]string, len(rec.Actions))
	copy(actions, rec.Actions)
	rec.Actions = actions
	return rec
}

// ForVariant returns the playbook of a variant
func ForVariant(v models.Variant) (*Playbook, bool) {
	p, ok := playbooks[v]
	return p, ok
}

var playbooks = map[models.Variant]*Playbook{
	models.VariantStandard: {
		Variant: models.VariantStandard,
		Title:   "Customer Churn Prediction Dashboard",
		Tagline: "Predict which customers are likely to leave and take proactive action!",
		About: "This churn prediction model is based on machine learning analysis of " +
			"10,000+ customer records. The model achieves 85% accuracy in predicting " +
			"customer churn using patterns discovered during data analysis.",
		Drivers: []string{
			"Number of Products (1 product = highest risk)",
			"Customer Age (Older = higher risk)",
			"Geography (Germany = 32% churn rate)",
			"Account Balance (High balance = higher risk)",
			"Active Status (Inactive = higher risk)",
		},
		Performance: []string{
			"Accuracy: 85%",
			"Recall: 74% (catches most churners)",
			"ROC-AUC: 0.858",
			"Training Data: 10,000 customers",
		},
		Confidence: "85% (based on SVM model performance)",
		SampleProfile: []string{
			"Age: 50+",
			"Products: 1",
			"Country: Germany",
			"Status: Inactive",
			"Balance: $100,000+",
		},
		NoFactorsMessage: "No major risk factors identified!",
		bands: map[Band]Recommendation{
			BandCritical: {Band: BandCritical, Heading: "IMMEDIATE ACTION REQUIRED:", Actions: []string{
				"Personal retention call from account manager",
				"Special loyalty offer or discount",
				"Product bundle upgrade opportunity",
				"Priority customer service handling",
			}},
			BandProactive: {Band: BandProactive, Heading: "PROACTIVE ENGAGEMENT NEEDED:", Actions: []string{
				"Targeted email campaign",
				"Customer satisfaction survey",
				"Cross-sell additional products",
				"Regular check-ins",
			}},
			BandMaintain: {Band: BandMaintain, Heading: "MAINTENANCE MODE:", Actions: []string{
				"Continue regular engagement",
				"Monitor for changes in behavior",
				"Maintain excellent service quality",
			}},
		},
	},
	models.VariantModel: {
		Variant: models.VariantModel,
		Title:   "Customer Churn Prediction Dashboard",
		Tagline: "Predict which customers are likely to leave using the trained classifier.",
		About: "This churn prediction model uses machine learning to identify " +
			"customers at risk of leaving. The model was trained on historical " +
			"customer data and achieves 85% accuracy in predicting churn.",
		Drivers: []string{
			"Number of Products",
			"Customer Age",
			"Account Balance",
			"Active Member Status",
		},
		NoFactorsMessage: "No major risk factors identified!",
		bands: map[Band]Recommendation{
			BandCritical: {Band: BandCritical, Heading: "Immediate Action Required:", Actions: []string{
				"Personal retention call from account manager",
				"Special loyalty offer or discount",
				"Product bundle upgrade opportunity",
			}},
			BandProactive: {Band: BandProactive, Heading: "Proactive Engagement Needed:", Actions: []string{
				"Targeted email campaign",
				"Customer satisfaction survey",
				"Cross-sell additional products",
			}},
			BandMaintain: {Band: BandMaintain, Heading: "Maintenance Mode:", Actions: []string{
				"Continue regular engagement",
				"Monitor for changes in behavior",
				"Maintain excellent service quality",
			}},
		},
	},
	models.VariantMobile: {
		Variant: models.VariantMobile,
		Title:   "Churn Predictor Mobile",
		Tagline: "Quick churn risk checks on the go.",
		Drivers: []string{
			"Most important: Products & Age",
			"Germany = High risk region",
			"1 Product = Highest churn rate",
		},
		Performance: []string{
			"85% Prediction Accuracy",
			"74% Churn Detection Rate",
			"10,000+ Customers Analyzed",
		},
		QuickStats: []Stat{
			{Label: "Accuracy", Value: "85%"},
			{Label: "Speed", Value: "Instant"},
			{Label: "Data", Value: "10K+"},
		},
		InstallTips: []string{
			"Tap Share/More (⋮) → Add to Home Screen",
			"Use like a native app!",
		},
		Footer:           "Powered by ML Analysis • 85% Accuracy • Instant Predictions",
		NoFactorsMessage: "Low Risk Profile: No major risk factors detected",
		QuickActions: []QuickAction{
			{Key: "call", Label: "Call", Title: "Call Protocol", Detail: "Listen → Empathize → Offer Solution"},
			{Key: "email", Label: "Email", Title: "Email Template", Detail: "Personal greeting + Value offer"},
			{Key: "report", Label: "Report", Title: "Report Generated", Detail: "Risk factors + Recommendations"},
		},
		bands: map[Band]Recommendation{
			BandCritical: {Band: BandCritical, Heading: "CRITICAL - Immediate Action Required", Actions: []string{
				"Call customer within 24 hours",
				"Offer 15% loyalty discount",
				"Upgrade to premium product bundle",
				"Assign dedicated account manager",
			}},
			BandProactive: {Band: BandProactive, Heading: "HIGH RISK - Proactive Outreach", Actions: []string{
				"Email personalized retention offer",
				"Survey customer satisfaction",
				"Cross-sell additional products",
				"Schedule follow-up call",
			}},
			BandMaintain: {Band: BandMaintain, Heading: "LOW RISK - Maintain & Monitor", Actions: []string{
				"Continue excellent service",
				"Monitor for behavior changes",
				"Engage with relevant content",
				"Check-in quarterly",
			}},
		},
	},
}
