package predictor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ajharbinger/churnguard/internal/errors"
	"github.com/ajharbinger/churnguard/internal/models"
)

// Artifact file names inside the model directory
const (
	ClassifierFile   = "churn_prediction_model.json"
	ScalerFile       = "feature_scaler.json"
	FeatureNamesFile = "feature_names.json"
)

const (
	classifierTypeLogistic = "logistic_regression"
	scalerTypeStandard     = "standard_scaler"
)

// Artifacts is the loaded, read-only model bundle. Build it once with LoadArtifacts.
type Artifacts struct {
	dir          string
	classifier   *LogisticRegression
	scaler       *StandardScaler
	featureNames []string
}

// Dir returns the directory the artifacts were loaded from
func (a *Artifacts) Dir() string { return a.dir }

// Classifier returns the fitted classifier
func (a *Artifacts) Classifier() Classifier { return a.classifier }

// Scaler returns the fitted feature scaler
func (a *Artifacts) Scaler() Scaler { return a.scaler }

// FeatureNames returns a copy of the persisted column order
func (a *Artifacts) FeatureNames() []string {
	names := make([]string, len(a.featureNames))
	copy(names, a.featureNames)
	return names
}

type classifierFile struct {
	Type string `json:"type"`
	LogisticRegression
}

type scalerFile struct {
	Type string `json:"type"`
	StandardScaler
}

// LoadArtifacts reads and cross-checks the classifier, scaler and feature names in dir.
// Every failure is an ARTIFACT_LOAD_FAILURE.
func LoadArtifacts(dir string) (*Artifacts, error) {
	var cf classifierFile
	if err := readJSON(dir, ClassifierFile, &cf); err != nil {
		return nil, err
	}
	if cf.Type != "" && cf.Type != classifierTypeLogistic {
		return nil, loadFailure(ClassifierFile, fmt.Errorf("unsupported classifier type %q", cf.Type))
	}
	if err := cf.validate(); err != nil {
		return nil, loadFailure(ClassifierFile, err)
	}

	var sf scalerFile
	if err := readJSON(dir, ScalerFile, &sf); err != nil {
		return nil, err
	}
	if sf.Type != "" && sf.Type != scalerTypeStandard {
		return nil, loadFailure(ScalerFile, fmt.Errorf("unsupported scaler type %q", sf.Type))
	}
	if err := sf.validate(); err != nil {
		return nil, loadFailure(ScalerFile, err)
	}

	var names []string
	if err := readJSON(dir, FeatureNamesFile, &names); err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, loadFailure(FeatureNamesFile, fmt.Errorf("feature name list is empty"))
	}
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return nil, loadFailure(FeatureNamesFile, fmt.Errorf("duplicate feature %q", name))
		}
		seen[name] = true
	}
	if _, err := Vector(models.DefaultProfile(), names); err != nil {
		return nil, loadFailure(FeatureNamesFile, err)
	}

	if sf.Dimensions() != len(names) || cf.Dimensions() != len(names) {
		return nil, loadFailure(dir, fmt.Errorf("dimension mismatch: %d feature names, scaler %d, classifier %d",
			len(names), sf.Dimensions(), cf.Dimensions()))
	}

	classifier := cf.LogisticRegression
	scaler := sf.StandardScaler
	return &Artifacts{
		dir:          dir,
		classifier:   &classifier,
		scaler:       &scaler,
		featureNames: names,
	}, nil
}

func readJSON(dir, name string, v interface{}) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		return loadFailure(name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return loadFailure(name, err)
	}
	return nil
}

func loadFailure(what string, cause error) error {
	return errors.ArtifactLoadFailure("failed to load model artifact", cause).
		WithDetails(what).
		WithOperation("LoadArtifacts")
}
