package predictor

import (
	"fmt"
	"math"
)

// Scaler normalizes a feature vector into the range the classifier expects
type Scaler interface {
	Transform(vec []float64) ([]float64, error)
}

// Classifier returns the positive-class (churn) probability for a scaled vector
type Classifier interface {
	PredictProbability(vec []float64) (float64, error)
}

// StandardScaler applies (x - mean) / scale per column, as fitted on the training set
type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 {
		return fmt.Errorf("scaler has no columns")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean has %d columns but scale has %d", len(s.Mean), len(s.Scale))
	}
	for i, sc := range s.Scale {
		if sc == 0 || math.IsNaN(sc) || math.IsInf(sc, 0) {
			return fmt.Errorf("scaler column %d has unusable scale %v", i, sc)
		}
		if math.IsNaN(s.Mean[i]) || math.IsInf(s.Mean[i], 0) {
			return fmt.Errorf("scaler column %d has unusable mean %v", i, s.Mean[i])
		}
	}
	return nil
}

// Dimensions returns the number of columns the scaler was fitted on
func (s *StandardScaler) Dimensions() int {
	return len(s.Mean)
}

// Transform implements Scaler
func (s *StandardScaler) Transform(vec []float64) ([]float64, error) {
	if len(vec) != len(s.Mean) {
		return nil, fmt.Errorf("scaler expects %d features, got %d", len(s.Mean), len(vec))
	}
	out := make([]float64, len(vec))
	for i, v := range vec {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// LogisticRegression is a fitted binary logistic classifier
type LogisticRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (m *LogisticRegression) validate() error {
	if len(m.Coefficients) == 0 {
		return fmt.Errorf("classifier has no coefficients")
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("classifier coefficient %d is not finite", i)
		}
	}
	if math.IsNaN(m.Intercept) || math.IsInf(m.Intercept, 0) {
		return fmt.Errorf("classifier intercept is not finite")
	}
	return nil
}

// Dimensions returns the number of features the classifier takes
func (m *LogisticRegression) Dimensions() int {
	return len(m.Coefficients)
}

// PredictProbability implements Classifier
func (m *LogisticRegression) PredictProbability(vec []float64) (float64, error) {
	if len(vec) != len(m.Coefficients) {
		return 0, fmt.Errorf("classifier expects %d features, got %d", len(m.Coefficients), len(vec))
	}
	z := m.Intercept
	for i, v := range vec {
		z += m.Coefficients[i] * v
	}
	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
