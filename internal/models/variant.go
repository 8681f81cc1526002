package models

import (
	"fmt"
	"strings"
)

// Variant selects the dashboard flavor and the scorer behind it
type Variant string

const (
	VariantStandard Variant = "standard"
	VariantMobile   Variant = "mobile"
	VariantModel    Variant = "model"
)

// Variants lists every variant in display order
var Variants = []Variant{VariantStandard, VariantMobile, VariantModel}

// ParseVariant accepts a case-insensitive variant name
func ParseVariant(s string) (Variant, error) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown variant %q", s)
}

// DefaultProfileFor returns the form defaults of a variant. The mobile form
// starts from a male, active member.
func DefaultProfileFor(v Variant) CustomerProfile {
	p := DefaultProfile()
	if v == VariantMobile {
		p.Gender = GenderMale
		p.IsActiveMember = true
	}
	return p
}
