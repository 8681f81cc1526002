package predictor

import (
	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/models"
	"github.com/ajharbinger/churnguard/internal/scoring"
)

// Source is reported on assessments produced by the classifier
const Source = "model"

// churnThreshold is the decision boundary on the positive-class probability
const churnThreshold = 0.5

// Predictor scores profiles with the loaded classifier. It implements scoring.Scorer.
type Predictor struct {
	artifacts *Artifacts
	flags     *scoring.FlagEvaluator
}

// NewPredictor wires loaded artifacts to the risk flags shown beside the probability
func NewPredictor(artifacts *Artifacts, flags []scoring.RiskFlag) (*Predictor, error) {
	evaluator, err := scoring.NewFlagEvaluator(flags)
	if err != nil {
		return nil, err
	}
	return &Predictor{artifacts: artifacts, flags: evaluator}, nil
}

// Assess implements scoring.Scorer
func (p *Predictor) Assess(profile models.CustomerProfile) (*scoring.RiskAssessment, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	vec, err := Vector(profile, p.artifacts.featureNames)
	if err != nil {
		return nil, errors.InternalError("failed to build feature vector", err).WithOperation("Predict")
	}
	scaled, err := p.artifacts.Scaler().Transform(vec)
	if err != nil {
		return nil, errors.InternalError("failed to scale features", err).WithOperation("Predict")
	}
	probability, err := p.artifacts.Classifier().PredictProbability(scaled)
	if err != nil {
		return nil, errors.InternalError("classifier prediction failed", err).WithOperation("Predict")
	}

	return &scoring.RiskAssessment{
		Source:           Source,
		RawScore:         probability,
		ChurnProbability: probability,
		WillChurn:        probability > churnThreshold,
		TriggeredFactors: p.flags.Evaluate(profile),
	}, nil
}
