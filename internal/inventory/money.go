package inventory

import (
	"strings"

	"github.com/shopspring/decimal"
)

// roundMoney rounds v to cents, half away from zero.
func roundMoney(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// formatMoney renders a money value the way the CSV stores it.
func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatCurrency renders v as dollars with thousands separators, e.g. $12,345.60.
func FormatCurrency(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + "$" + b.String() + "." + frac
}
