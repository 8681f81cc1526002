package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/logger"
	"github.com/ajharbinger/churnguard/internal/metrics"
	"github.com/ajharbinger/churnguard/internal/models"
	"github.com/ajharbinger/churnguard/internal/predictor"
	"github.com/ajharbinger/churnguard/internal/recommend"
	"github.com/ajharbinger/churnguard/internal/scoring"
)

// Scorer kinds reported by ListVariants
const (
	ScorerRules = "rules"
	ScorerModel = "model"
)

// variantRuleSets binds the rule-driven variants to their rule set ID
var variantRuleSets = map[models.Variant]string{
	models.VariantStandard: scoring.RuleSetStandard,
	models.VariantMobile:   scoring.RuleSetMobile,
}

// assessmentServiceImpl implements AssessmentService. Everything is built once and read-only afterwards.
type assessmentServiceImpl struct {
	defaultVariant models.Variant
	ruleScorers    map[string]*scoring.RuleScorer
	model          scoring.Scorer
	modelDir       string
	metrics        *metrics.Metrics
	logger         logger.Logger
	now            func() time.Time
}

// newAssessmentService compiles one scorer per loaded rule set and wraps the classifier when present
func newAssessmentService(defaultVariant models.Variant, deps Dependencies) (*assessmentServiceImpl, error) {
	s := &assessmentServiceImpl{
		defaultVariant: defaultVariant,
		ruleScorers:    make(map[string]*scoring.RuleScorer, len(deps.RuleSets)),
		metrics:        deps.Metrics,
		logger:         deps.Logger,
		now:            time.Now,
	}

	for _, rs := range deps.RuleSets {
		scorer, err := scoring.NewRuleScorer(rs)
		if err != nil {
			return nil, err
		}
		s.ruleScorers[rs.ID] = scorer
	}
	for variant, id := range variantRuleSets {
		if _, ok := s.ruleScorers[id]; !ok {
			return nil, errors.InvalidRuleSet(fmt.Sprintf("variant %s needs rule set %q", variant, id), nil).
				WithOperation("NewAssessmentService")
		}
	}

	if deps.Artifacts != nil {
		p, err := predictor.NewPredictor(deps.Artifacts, scoring.ModelRiskFlags())
		if err != nil {
			return nil, err
		}
		s.model = p
		s.modelDir = deps.Artifacts.Dir()
	}

	if !s.available(defaultVariant) {
		return nil, errors.InvalidInput(fmt.Sprintf("default variant %s is not available", defaultVariant), nil).
			WithOperation("NewAssessmentService")
	}
	return s, nil
}

// DefaultVariant returns the variant used when a request names none
func (s *assessmentServiceImpl) DefaultVariant() models.Variant {
	return s.defaultVariant
}

func (s *assessmentServiceImpl) available(v models.Variant) bool {
	if v == models.VariantModel {
		return s.model != nil
	}
	_, ok := variantRuleSets[v]
	return ok
}

// ListVariants reports every variant in display order
func (s *assessmentServiceImpl) ListVariants() []VariantInfo {
	infos := make([]VariantInfo, 0, len(models.Variants))
	for _, v := range models.Variants {
		info := VariantInfo{
			Name:      v,
			Scorer:    ScorerRules,
			RuleSetID: variantRuleSets[v],
			Available: s.available(v),
			Default:   v == s.defaultVariant,
		}
		if v == models.VariantModel {
			info.Scorer = ScorerModel
			info.ModelDir = s.modelDir
		}
		if p, ok := recommend.ForVariant(v); ok {
			info.Title = p.Title
		}
		infos = append(infos, info)
	}
	return infos
}

func (s *assessmentServiceImpl) scorerFor(variant models.Variant, ruleSetID string) (scoring.Scorer, string, error) {
	if ruleSetID != "" {
		scorer, ok := s.ruleScorers[ruleSetID]
		if !ok {
			return nil, "", errors.NotFound(fmt.Sprintf("rule set %s not found", ruleSetID), nil)
		}
		return scorer, ruleSetID, nil
	}

	if variant == models.VariantModel {
		if s.model == nil {
			return nil, "", errors.ServiceError("model variant is not loaded", nil).
				WithDetails("set MODEL_DIR to a directory with the classifier artifacts")
		}
		return s.model, "", nil
	}

	id, ok := variantRuleSets[variant]
	if !ok {
		return nil, "", errors.InvalidInput(fmt.Sprintf("unknown variant %q", variant), nil)
	}
	return s.ruleScorers[id], id, nil
}

// Assess scores a profile and attaches the variant's recommendation
func (s *assessmentServiceImpl) Assess(ctx context.Context, req AssessmentRequest) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	variant := s.defaultVariant
	if req.Variant != "" {
		v, err := models.ParseVariant(string(req.Variant))
		if err != nil {
			return nil, errors.InvalidInput(err.Error(), nil).WithOperation("Assess")
		}
		variant = v
	}
	playbook, ok := recommend.ForVariant(variant)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown variant %q", variant), nil).WithOperation("Assess")
	}

	scorer, ruleSetID, err := s.scorerFor(variant, req.RuleSetID)
	if err != nil {
		s.observeFailure(variant, err)
		return nil, withOperation(err, "Assess")
	}

	assessment, err := scorer.Assess(req.Profile)
	if err != nil {
		s.observeFailure(variant, err)
		s.logger.Debug("assessment rejected", "variant", variant, "error", err)
		return nil, err
	}

	recommendation := playbook.Recommend(assessment.ChurnProbability)
	if s.metrics != nil {
		s.metrics.ObserveAssessment(string(variant), string(recommendation.Band), assessment.ChurnProbability)
	}

	report := &Report{
		ID:             uuid.New(),
		Variant:        variant,
		RuleSetID:      ruleSetID,
		Profile:        req.Profile,
		Assessment:     assessment,
		RiskLabel:      recommend.RiskLabel(assessment.WillChurn),
		Recommendation: recommendation,
		AssessedAt:     s.now().UTC(),
	}

	s.logger.Info("assessment completed",
		"assessment_id", report.ID,
		"variant", variant,
		"rule_set", ruleSetID,
		"probability", assessment.ChurnProbability,
		"band", recommendation.Band,
		"factors", len(assessment.TriggeredFactors),
	)
	return report, nil
}

func (s *assessmentServiceImpl) observeFailure(variant models.Variant, err error) {
	if s.metrics == nil {
		return
	}
	code := errors.ErrCodeInternalError
	if appErr, ok := errors.As(err); ok {
		code = appErr.Code
	}
	s.metrics.ObserveFailure(string(variant), code)
}

func withOperation(err error, operation string) error {
	if appErr, ok := errors.As(err); ok && appErr.Operation == "" {
		appErr.Operation = operation
	}
	return err
}
