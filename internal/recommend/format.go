package recommend

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatCurrency renders an amount as dollars with thousands separators, e.g. $150,000.00
func FormatCurrency(amount float64) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}

// FormatPercent renders a probability with one decimal, e.g. 0.55 -> 55.0%
func FormatPercent(probability float64) string {
	return decimal.NewFromFloat(probability).Shift(2).StringFixed(1) + "%"
}
