package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/churnguard/internal/logger"
	"github.com/ajharbinger/churnguard/internal/metrics"
	"github.com/ajharbinger/churnguard/internal/models"
	"github.com/ajharbinger/churnguard/internal/predictor"
	"github.com/ajharbinger/churnguard/internal/recommend"
	"github.com/ajharbinger/churnguard/internal/repository"
	"github.com/ajharbinger/churnguard/internal/scoring"
	"github.com/ajharbinger/churnguard/pkg/config"
)

// Services contains all application services
type Services struct {
	Assessment AssessmentService
	RuleSets   RuleSetService
	Auth       AuthService
}

// AssessmentService scores profiles for a dashboard variant
type AssessmentService interface {
	Assess(ctx context.Context, req AssessmentRequest) (*Report, error)
	ListVariants() []VariantInfo
	DefaultVariant() models.Variant
}

// RuleSetService exposes the loaded rule tables
type RuleSetService interface {
	ListRuleSets() []scoring.RuleSet
	GetRuleSet(ctx context.Context, id string) (*scoring.RuleSet, error)
}

// AuthService exchanges API credentials for service tokens
type AuthService interface {
	IssueToken(clientID, apiKey string) (*TokenResponse, error)
}

// AssessmentRequest selects a variant and, optionally, a specific rule set
type AssessmentRequest struct {
	Variant   models.Variant         `json:"variant"`
	RuleSetID string                 `json:"rule_set_id,omitempty"`
	Profile   models.CustomerProfile `json:"profile"`
}

// Report is everything the dashboard renders for one assessment
type Report struct {
	ID             uuid.UUID                `json:"id" yaml:"id"`
	Variant        models.Variant           `json:"variant" yaml:"variant"`
	RuleSetID      string                   `json:"rule_set_id,omitempty" yaml:"rule_set_id,omitempty"`
	Profile        models.CustomerProfile   `json:"profile" yaml:"profile"`
	Assessment     *scoring.RiskAssessment  `json:"assessment" yaml:"assessment"`
	RiskLabel      string                   `json:"risk_label" yaml:"risk_label"`
	Recommendation recommend.Recommendation `json:"recommendation" yaml:"recommendation"`
	AssessedAt     time.Time                `json:"assessed_at" yaml:"assessed_at"`
}

// VariantInfo describes one dashboard variant and the scorer behind it
type VariantInfo struct {
	Name      models.Variant `json:"name"`
	Title     string         `json:"title"`
	Scorer    string         `json:"scorer"`
	RuleSetID string         `json:"rule_set_id,omitempty"`
	Available bool           `json:"available"`
	ModelDir  string         `json:"model_dir,omitempty"`
	Default   bool           `json:"default"`
}

// TokenResponse is returned by the token endpoint
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Dependencies are the loaded, immutable inputs the services are built from
type Dependencies struct {
	RuleSets  []scoring.RuleSet
	Artifacts *predictor.Artifacts         // nil disables the model variant
	Repo      repository.RuleSetRepository // optional, serves stored rule sets that were not loaded
	Metrics   *metrics.Metrics             // optional
	Logger    logger.Logger
}

// NewServices creates a new Services instance with all dependencies
func NewServices(cfg *config.Config, deps Dependencies) (*Services, error) {
	if deps.Logger == nil {
		deps.Logger = logger.NewNop()
	}

	defaultVariant, err := models.ParseVariant(cfg.DefaultVariant)
	if err != nil {
		return nil, err
	}

	assessment, err := newAssessmentService(defaultVariant, deps)
	if err != nil {
		return nil, err
	}

	return &Services{
		Assessment: assessment,
		RuleSets:   newRuleSetService(deps.RuleSets, deps.Repo),
		Auth:       newAuthService(cfg),
	}, nil
}
