// Package format renders exact quantities for people.
package format

import (
	"strings"

	"github.com/iwvelando/factory-planner/pkg/constants"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Number returns r rounded to constants.DisplayPrecision places with
// thousands separators (e.g., "-1,234.567").
func Number(r rational.Rational) string {
	s := r.Decimal(constants.DisplayPrecision)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}
	intPart, decPart, hasDec := strings.Cut(s, ".")

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	if hasDec {
		return sign + intPart + "." + decPart
	}
	return sign + intPart
}

// Rate returns a per-second rate, e.g. "7.5/s".
func Rate(r rational.Rational) string {
	return Number(r) + "/s"
}

// Power returns a power draw given in kW, switching to MW at 1000 kW.
func Power(kw rational.Rational) string {
	mw := rational.FromInt(constants.KilowattsPerMegawatt)
	if kw.Abs().Cmp(mw) >= 0 {
		return Number(kw.MustDiv(mw)) + " MW"
	}
	return Number(kw) + " kW"
}

// Exact returns r with its exact fraction when rounding loses precision,
// e.g. "0.333 (1/3)".
func Exact(r rational.Rational) string {
	n := Number(r)
	if r.IsInt() {
		return n
	}
	return n + " (" + r.String() + ")"
}
