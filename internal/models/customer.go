package models

import (
	"fmt"
	"strings"

	"github.com/ajharbinger/churnguard/internal/errors"
)

// Gender is the customer's recorded gender
type Gender uint8

const (
	GenderFemale Gender = iota + 1
	GenderMale
)

// Genders lists every valid Gender in form order
var Genders = []Gender{GenderFemale, GenderMale}

func (g Gender) String() string {
	switch g {
	case GenderFemale:
		return "Female"
	case GenderMale:
		return "Male"
	default:
		return fmt.Sprintf("Gender(%d)", uint8(g))
	}
}

// Valid reports whether g is a declared Gender
func (g Gender) Valid() bool {
	return g == GenderFemale || g == GenderMale
}

// ParseGender accepts the case-insensitive display name
func ParseGender(s string) (Gender, error) {
	for _, g := range Genders {
		if strings.EqualFold(strings.TrimSpace(s), g.String()) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown gender %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (g Gender) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid gender %d", uint8(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Gender) UnmarshalText(text []byte) error {
	parsed, err := ParseGender(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Geography is the customer's country
type Geography uint8

const (
	GeographyFrance Geography = iota + 1
	GeographyGermany
	GeographySpain
)

// Geographies lists every valid Geography in form order
var Geographies = []Geography{GeographyFrance, GeographyGermany, GeographySpain}

func (g Geography) String() string {
	switch g {
	case GeographyFrance:
		return "France"
	case GeographyGermany:
		return "Germany"
	case GeographySpain:
		return "Spain"
	default:
		return fmt.Sprintf("Geography(%d)", uint8(g))
	}
}

// Valid reports whether g is a declared Geography
func (g Geography) Valid() bool {
	return g >= GeographyFrance && g <= GeographySpain
}

// ParseGeography accepts the case-insensitive country name
func ParseGeography(s string) (Geography, error) {
	for _, g := range Geographies {
		if strings.EqualFold(strings.TrimSpace(s), g.String()) {
			return g, nil
		}
	}
	return 0, fmt.Errorf("unknown geography %q", s)
}

// MarshalText implements encoding.TextMarshaler
func (g Geography) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid geography %d", uint8(g))
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (g *Geography) UnmarshalText(text []byte) error {
	parsed, err := ParseGeography(string(text))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// Attribute domains accepted by the dashboard form
const (
	MinAge             = 18
	MaxAge             = 92
	MinCreditScore     = 350
	MaxCreditScore     = 850
	MaxBalance         = 300000.0
	MaxEstimatedSalary = 250000.0
	MaxTenure          = 10
	MinNumOfProducts   = 1
	MaxNumOfProducts   = 4
)

// CustomerProfile is the set of attributes collected for one assessment
type CustomerProfile struct {
	Age             int       `json:"age" yaml:"age"`
	Gender          Gender    `json:"gender" yaml:"gender"`
	CreditScore     int       `json:"credit_score" yaml:"credit_score"`
	Balance         float64   `json:"balance" yaml:"balance"`
	EstimatedSalary float64   `json:"estimated_salary" yaml:"estimated_salary"`
	HasCrCard       bool      `json:"has_cr_card" yaml:"has_cr_card"`
	Tenure          int       `json:"tenure" yaml:"tenure"`
	NumOfProducts   int       `json:"num_of_products" yaml:"num_of_products"`
	IsActiveMember  bool      `json:"is_active_member" yaml:"is_active_member"`
	Geography       Geography `json:"geography" yaml:"geography"`
}

// DefaultProfile returns the values the dashboard form starts with
func DefaultProfile() CustomerProfile {
	return CustomerProfile{
		Age:             40,
		Gender:          GenderFemale,
		CreditScore:     650,
		Balance:         50000,
		EstimatedSalary: 75000,
		HasCrCard:       false,
		Tenure:          5,
		NumOfProducts:   1,
		IsActiveMember:  false,
		Geography:       GeographyFrance,
	}
}

// Validate checks every attribute against its domain and reports all violations at once
func (p CustomerProfile) Validate() error {
	var problems []string

	if p.Age < MinAge || p.Age > MaxAge {
		problems = append(problems, fmt.Sprintf("age must be between %d and %d, got %d", MinAge, MaxAge, p.Age))
	}
	if !p.Gender.Valid() {
		problems = append(problems, "gender must be Female or Male")
	}
	if p.CreditScore < MinCreditScore || p.CreditScore > MaxCreditScore {
		problems = append(problems, fmt.Sprintf("credit_score must be between %d and %d, got %d", MinCreditScore, MaxCreditScore, p.CreditScore))
	}
	if !(p.Balance >= 0 && p.Balance <= MaxBalance) {
		problems = append(problems, fmt.Sprintf("balance must be between 0 and %.0f, got %v", MaxBalance, p.Balance))
	}
	if !(p.EstimatedSalary >= 0 && p.EstimatedSalary <= MaxEstimatedSalary) {
		problems = append(problems, fmt.Sprintf("estimated_salary must be between 0 and %.0f, got %v", MaxEstimatedSalary, p.EstimatedSalary))
	}
	if p.Tenure < 0 || p.Tenure > MaxTenure {
		problems = append(problems, fmt.Sprintf("tenure must be between 0 and %d, got %d", MaxTenure, p.Tenure))
	}
	if p.NumOfProducts < MinNumOfProducts || p.NumOfProducts > MaxNumOfProducts {
		problems = append(problems, fmt.Sprintf("num_of_products must be between %d and %d, got %d", MinNumOfProducts, MaxNumOfProducts, p.NumOfProducts))
	}
	if !p.Geography.Valid() {
		problems = append(problems, "geography must be France, Germany or Spain")
	}

	if len(problems) > 0 {
		return errors.InvalidProfile("customer profile out of range", nil).
			WithDetails(strings.Join(problems, "; ")).
			WithOperation("ValidateProfile")
	}
	return nil
}
