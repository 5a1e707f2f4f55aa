// Package mathutil provides helpers for presenting exact quantities.
package mathutil

import (
	"math/big"

	"github.com/iwvelando/factory-planner/pkg/rational"
)

// Ceil returns the smallest integer not less than r, e.g. the number of
// whole machines needed for a fractional machine count.
func Ceil(r rational.Rational) *big.Int {
	num, den := r.Num(), r.Denom()
	q, m := new(big.Int).DivMod(num, den, new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// Percentage returns value as a percentage of total, or zero when total is
// zero.
func Percentage(value, total rational.Rational) rational.Rational {
	if total.IsZero() {
		return rational.Zero
	}
	return value.Mul(rational.FromInt(100)).MustDiv(total)
}

// IsWhole reports whether r is an integer.
func IsWhole(r rational.Rational) bool {
	return r.IsInt()
}
