package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/metrics"
	"github.com/ajharbinger/churnguard/internal/models"
	"github.com/ajharbinger/churnguard/internal/predictor"
	"github.com/ajharbinger/churnguard/internal/recommend"
	"github.com/ajharbinger/churnguard/internal/scoring"
	"github.com/ajharbinger/churnguard/pkg/config"
)

// MockRuleSetRepository implements repository.RuleSetRepository for testing
type MockRuleSetRepository struct {
	sets []scoring.RuleSet
	err  error
}

func (m *MockRuleSetRepository) GetActiveRuleSets(ctx context.Context) ([]scoring.RuleSet, error) {
	return m.sets, m.err
}

func (m *MockRuleSetRepository) GetRuleSetByID(ctx context.Context, id string) (*scoring.RuleSet, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, rs := range m.sets {
		if rs.ID == id {
			return &rs, nil
		}
	}
	return nil, apperrors.NotFound("rule set not found", nil)
}

func testConfig() *config.Config {
	return &config.Config{DefaultVariant: "standard", APIClientID: "dashboard", JWTSecret: "test-secret"}
}

func newTestServices(t *testing.T, artifacts *predictor.Artifacts, m *metrics.Metrics) *Services {
	t.Helper()
	svc, err := NewServices(testConfig(), Dependencies{
		RuleSets:  scoring.DefaultRuleSets(),
		Artifacts: artifacts,
		Metrics:   m,
	})
	require.NoError(t, err)
	return svc
}

func highRiskProfile() models.CustomerProfile {
	return models.CustomerProfile{
		Age: 50, Gender: models.GenderFemale, CreditScore: 450, Balance: 150000, EstimatedSalary: 75000,
		HasCrCard: true, Tenure: 5, NumOfProducts: 1, IsActiveMember: false, Geography: models.GeographyGermany,
	}
}

func TestAssessmentService_Standard(t *testing.T) {
	m := metrics.New()
	svc := newTestServices(t, nil, m)
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	svc.Assessment.(*assessmentServiceImpl).now = func() time.Time { return fixed }

	report, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{Profile: highRiskProfile()})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID.String())
	assert.Equal(t, models.VariantStandard, report.Variant)
	assert.Equal(t, scoring.RuleSetStandard, report.RuleSetID)
	assert.Equal(t, 0.95, report.Assessment.ChurnProbability)
	assert.Equal(t, recommend.RiskLabelHigh, report.RiskLabel)
	assert.Equal(t, recommend.BandCritical, report.Recommendation.Band)
	assert.Len(t, report.Recommendation.Actions, 4)
	assert.Equal(t, fixed, report.AssessedAt)

	expected := `
# HELP churnguard_assessments_total Completed assessments by variant and band.
# TYPE churnguard_assessments_total counter
churnguard_assessments_total{band="critical",variant="standard"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "churnguard_assessments_total"))
}

func TestAssessmentService_Mobile(t *testing.T) {
	svc := newTestServices(t, nil, nil)

	report, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{
		Variant: models.VariantMobile,
		Profile: models.DefaultProfileFor(models.VariantMobile),
	})
	require.NoError(t, err)

	// only single product (0.35) fires for the mobile form defaults
	assert.Equal(t, 0.35, report.Assessment.ChurnProbability)
	assert.False(t, report.Assessment.WillChurn)
	assert.Equal(t, recommend.RiskLabelLow, report.RiskLabel)
	assert.Equal(t, "LOW RISK - Maintain & Monitor", report.Recommendation.Heading)
	require.Len(t, report.Assessment.TriggeredFactors, 1)
	assert.Equal(t, "single_product", report.Assessment.TriggeredFactors[0].Key)
}

func TestAssessmentService_VariantCaseInsensitive(t *testing.T) {
	svc := newTestServices(t, nil, nil)

	for _, name := range []models.Variant{"Standard", " MOBILE "} {
		report, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{Variant: name, Profile: highRiskProfile()})
		require.NoError(t, err, name)
		assert.Contains(t, models.Variants, report.Variant)
	}

	report, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{Variant: "Mobile", Profile: highRiskProfile()})
	require.NoError(t, err)
	assert.Equal(t, models.VariantMobile, report.Variant)
	assert.Equal(t, scoring.RuleSetMobile, report.RuleSetID)
}

func TestAssessmentService_ExplicitRuleSet(t *testing.T) {
	svc := newTestServices(t, nil, nil)

	report, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{
		Variant:   models.VariantStandard,
		RuleSetID: scoring.RuleSetMobile,
		Profile:   highRiskProfile(),
	})
	require.NoError(t, err)
	assert.Equal(t, scoring.RuleSetMobile, report.RuleSetID)
	assert.Equal(t, scoring.RuleSetMobile, report.Assessment.Source)

	_, err = svc.Assessment.Assess(context.Background(), AssessmentRequest{RuleSetID: "nope", Profile: highRiskProfile()})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestAssessmentService_Errors(t *testing.T) {
	m := metrics.New()
	svc := newTestServices(t, nil, m)

	bad := highRiskProfile()
	bad.Age = 120
	_, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{Profile: bad})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidProfile))

	_, err = svc.Assessment.Assess(context.Background(), AssessmentRequest{Variant: "tablet", Profile: highRiskProfile()})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	_, err = svc.Assessment.Assess(context.Background(), AssessmentRequest{Variant: models.VariantModel, Profile: highRiskProfile()})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeServiceError))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Assessment.Assess(ctx, AssessmentRequest{Profile: highRiskProfile()})
	assert.True(t, errors.Is(err, context.Canceled))

	expected := `
# HELP churnguard_assessment_failures_total Rejected assessments by variant and error code.
# TYPE churnguard_assessment_failures_total counter
churnguard_assessment_failures_total{code="INVALID_PROFILE",variant="standard"} 1
churnguard_assessment_failures_total{code="SERVICE_ERROR",variant="model"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "churnguard_assessment_failures_total"))
}

func TestAssessmentService_ModelVariant(t *testing.T) {
	artifacts, err := predictor.LoadArtifacts(filepath.Join("..", "..", "artifacts"))
	require.NoError(t, err)
	svc := newTestServices(t, artifacts, nil)

	report, err := svc.Assessment.Assess(context.Background(), AssessmentRequest{
		Variant: models.VariantModel,
		Profile: highRiskProfile(),
	})
	require.NoError(t, err)
	assert.Equal(t, predictor.Source, report.Assessment.Source)
	assert.Empty(t, report.RuleSetID)
	assert.Len(t, report.Assessment.TriggeredFactors, 5)

	variants := svc.Assessment.ListVariants()
	require.Len(t, variants, 3)
	assert.True(t, variants[2].Available)
	assert.Equal(t, ScorerModel, variants[2].Scorer)
	assert.Equal(t, filepath.Join("..", "..", "artifacts"), variants[2].ModelDir)
	assert.Empty(t, variants[0].ModelDir)
}

func TestListVariants(t *testing.T) {
	svc := newTestServices(t, nil, nil)

	variants := svc.Assessment.ListVariants()
	require.Len(t, variants, 3)
	assert.Equal(t, models.VariantStandard, variants[0].Name)
	assert.True(t, variants[0].Default)
	assert.Equal(t, scoring.RuleSetStandard, variants[0].RuleSetID)
	assert.Equal(t, "Churn Predictor Mobile", variants[1].Title)
	assert.False(t, variants[2].Available, "model variant needs artifacts")
	assert.Empty(t, variants[2].ModelDir)
}

func TestNewServices_Validation(t *testing.T) {
	cfg := testConfig()
	cfg.DefaultVariant = "model"
	_, err := NewServices(cfg, Dependencies{RuleSets: scoring.DefaultRuleSets()})
	assert.Error(t, err, "model default without artifacts")

	cfg.DefaultVariant = "desktop"
	_, err = NewServices(cfg, Dependencies{RuleSets: scoring.DefaultRuleSets()})
	assert.Error(t, err)

	_, err = NewServices(testConfig(), Dependencies{RuleSets: []scoring.RuleSet{scoring.StandardRuleSet()}})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRuleSet), "mobile rule set missing")
}

func TestRuleSetService(t *testing.T) {
	svc := newTestServices(t, nil, nil)

	sets := svc.RuleSets.ListRuleSets()
	require.Len(t, sets, 2)
	sets[0].ID = "mutated"

	rs, err := svc.RuleSets.GetRuleSet(context.Background(), scoring.RuleSetStandard)
	require.NoError(t, err)
	assert.Equal(t, scoring.RuleSetStandard, rs.ID)

	_, err = svc.RuleSets.GetRuleSet(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestRuleSetService_RepositoryFallback(t *testing.T) {
	archived := scoring.StandardRuleSet()
	archived.ID = "standard-2023"
	archived.Version = 7
	repo := &MockRuleSetRepository{sets: []scoring.RuleSet{archived}}

	svc, err := NewServices(testConfig(), Dependencies{
		RuleSets: scoring.DefaultRuleSets(),
		Repo:     repo,
	})
	require.NoError(t, err)

	assert.Len(t, svc.RuleSets.ListRuleSets(), 2, "stored rule sets are not listed unless loaded")

	rs, err := svc.RuleSets.GetRuleSet(context.Background(), "standard-2023")
	require.NoError(t, err)
	assert.Equal(t, 7, rs.Version)

	rs, err = svc.RuleSets.GetRuleSet(context.Background(), scoring.RuleSetMobile)
	require.NoError(t, err)
	assert.Equal(t, scoring.RuleSetMobile, rs.ID, "loaded sets win over the repository")

	_, err = svc.RuleSets.GetRuleSet(context.Background(), "nope")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	repo.err = apperrors.DatabaseError("down", nil)
	_, err = svc.RuleSets.GetRuleSet(context.Background(), "standard-2023")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseError))
}

func TestLoadRuleSets_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	fileSet := scoring.MobileRuleSet()
	fileSet.Name = "Mobile from file"
	extra := scoring.StandardRuleSet()
	extra.ID = "standard-lenient"
	data, err := scoring.MarshalRuleSetsYAML([]scoring.RuleSet{fileSet, extra})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	dbSet := scoring.StandardRuleSet()
	dbSet.Name = "Standard from database"
	repo := &MockRuleSetRepository{sets: []scoring.RuleSet{dbSet}}

	sets, err := LoadRuleSets(context.Background(), path, repo, nil)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, "Standard from database", sets[0].Name)
	assert.Equal(t, "Mobile from file", sets[1].Name)
	assert.Equal(t, "standard-lenient", sets[2].ID)

	sets, err = LoadRuleSets(context.Background(), "", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultRuleSets(), sets)

	_, err = LoadRuleSets(context.Background(), "", &MockRuleSetRepository{err: apperrors.DatabaseError("down", nil)}, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDatabaseError))

	_, err = LoadRuleSets(context.Background(), filepath.Join(dir, "missing.yaml"), nil, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidRuleSet))
}

func TestAuthService_IssueToken(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("key-123"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := testConfig()
	cfg.APIKeyHash = string(hash)
	svc := newAuthService(cfg)

	token, err := svc.IssueToken("dashboard", "key-123")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.True(t, token.ExpiresAt.After(time.Now()))

	_, err = svc.IssueToken("dashboard", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))

	_, err = svc.IssueToken("someone", "key-123")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeUnauthorized))

	_, err = svc.IssueToken("", "")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))

	_, err = newAuthService(testConfig()).IssueToken("dashboard", "key-123")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeServiceError))
}
