package predictor

import (
	"fmt"

	"github.com/ajharbinger/churnguard/internal/models"
)

// Feature column names written by the training pipeline
const (
	FeatureCreditScore     = "CreditScore"
	FeatureGender          = "Gender"
	FeatureAge             = "Age"
	FeatureTenure          = "Tenure"
	FeatureBalance         = "Balance"
	FeatureNumOfProducts   = "NumOfProducts"
	FeatureHasCrCard       = "HasCrCard"
	FeatureIsActiveMember  = "IsActiveMember"
	FeatureEstimatedSalary = "EstimatedSalary"
	FeatureGeoFrance       = "Geo_France"
	FeatureGeoGermany      = "Geo_Germany"
	FeatureGeoSpain        = "Geo_Spain"
)

// DefaultFeatureNames is the column order the classifier was trained with
var DefaultFeatureNames = []string{
	FeatureCreditScore,
	FeatureGender,
	FeatureAge,
	FeatureTenure,
	FeatureBalance,
	FeatureNumOfProducts,
	FeatureHasCrCard,
	FeatureIsActiveMember,
	FeatureEstimatedSalary,
	FeatureGeoFrance,
	FeatureGeoGermany,
	FeatureGeoSpain,
}

// Features returns the named numeric encoding of a profile.
// Gender is Female=0, Male=1; booleans are 0/1; geography is one-hot.
func Features(p models.CustomerProfile) map[string]float64 {
	return map[string]float64{
		FeatureCreditScore:     float64(p.CreditScore),
		FeatureGender:          boolToFloat(p.Gender == models.GenderMale),
		FeatureAge:             float64(p.Age),
		FeatureTenure:          float64(p.Tenure),
		FeatureBalance:         p.Balance,
		FeatureNumOfProducts:   float64(p.NumOfProducts),
		FeatureHasCrCard:       boolToFloat(p.HasCrCard),
		FeatureIsActiveMember:  boolToFloat(p.IsActiveMember),
		FeatureEstimatedSalary: p.EstimatedSalary,
		FeatureGeoFrance:       boolToFloat(p.Geography == models.GeographyFrance),
		FeatureGeoGermany:      boolToFloat(p.Geography == models.GeographyGermany),
		FeatureGeoSpain:        boolToFloat(p.Geography == models.GeographySpain),
	}
}

// Vector orders the profile's features by names
func Vector(p models.CustomerProfile, names []string) ([]float64, error) {
	features := Features(p)
	vec := make([]float64, len(names))
	for i, name := range names {
		v, ok := features[name]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q", name)
		}
		vec[i] = v
	}
	return vec, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
