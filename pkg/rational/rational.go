// Package rational provides an immutable, exact fraction type backed by
// arbitrary-precision integers. Every quantity that affects solver
// correctness is carried as a Rational; Float64 exists for display only.
package rational

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"gopkg.in/yaml.v3"
)

// maxExponent bounds decimal exponents accepted by Parse.
const maxExponent = 1000

var (
	decimalPattern  = regexp.MustCompile(`^([+-]?)(\d+(?:\.\d*)?|\.\d+)(?:[eE]([+-]?\d+))?$`)
	fractionPattern = regexp.MustCompile(`^([+-]?)(\d+)/(\d+)$`)

	zeroRat = new(big.Rat)
	ten     = big.NewInt(10)
)

// Rational is an exact fraction in lowest terms with a positive
// denominator. The zero value is 0 and is ready to use. Values are never
// mutated after construction, so they may be shared freely.
type Rational struct {
	r *big.Rat
}

var (
	// Zero is the rational 0.
	Zero = Rational{}
	// One is the rational 1.
	One = FromInt(1)
)

func wrap(v *big.Rat) Rational {
	if v.Sign() == 0 {
		return Rational{}
	}
	return Rational{r: v}
}

func (a Rational) val() *big.Rat {
	if a.r == nil {
		return zeroRat
	}
	return a.r
}

// FromInt returns n as a Rational.
func FromInt(n int64) Rational {
	return wrap(new(big.Rat).SetInt64(n))
}

// FromBig returns a copy of v as a Rational.
func FromBig(v *big.Rat) Rational {
	if v == nil {
		return Rational{}
	}
	return wrap(new(big.Rat).Set(v))
}

// New returns num/den, failing with DivisionByZero when den is zero.
func New(num, den int64) (Rational, error) {
	if den == 0 {
		return Rational{}, apperrors.NewWithContext(apperrors.ErrCodeDivisionByZero,
			"rational denominator cannot be zero", map[string]any{"numerator": num})
	}
	return wrap(big.NewRat(num, den)), nil
}

// MustNew is New for constants known to be valid; it panics on error.
func MustNew(num, den int64) Rational {
	v, err := New(num, den)
	if err != nil {
		panic(err)
	}
	return v
}

// Parse reads a decimal ("1.25", "-3", ".5", "2e-3") or fraction ("5/4")
// string. Malformed input fails with InvalidRational and a zero
// denominator fails with DivisionByZero.
func Parse(s string) (Rational, error) {
	trimmed := strings.TrimSpace(s)

	if m := fractionPattern.FindStringSubmatch(trimmed); m != nil {
		num, _ := new(big.Int).SetString(m[2], 10)
		den, _ := new(big.Int).SetString(m[3], 10)
		if den.Sign() == 0 {
			return Rational{}, apperrors.NewWithContext(apperrors.ErrCodeDivisionByZero,
				"rational denominator cannot be zero", map[string]any{"value": s})
		}
		if m[1] == "-" {
			num.Neg(num)
		}
		return wrap(new(big.Rat).SetFrac(num, den)), nil
	}

	m := decimalPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return Rational{}, invalid(s)
	}

	intPart, fracPart, _ := strings.Cut(m[2], ".")
	num, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return Rational{}, invalid(s)
	}
	scale := -len(fracPart)
	if m[3] != "" {
		exp, err := strconv.Atoi(m[3])
		if err != nil || exp > maxExponent || exp < -maxExponent {
			return Rational{}, invalid(s)
		}
		scale += exp
	}
	if m[1] == "-" {
		num.Neg(num)
	}

	v := new(big.Rat).SetInt(num)
	if scale != 0 {
		pow := new(big.Int).Exp(ten, big.NewInt(int64(abs(scale))), nil)
		if scale > 0 {
			v.Mul(v, new(big.Rat).SetInt(pow))
		} else {
			v.Quo(v, new(big.Rat).SetInt(pow))
		}
	}
	return wrap(v), nil
}

// MustParse is Parse for literals known to be valid; it panics on error.
func MustParse(s string) Rational {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromFloat converts f through its shortest decimal representation, so
// 0.1 becomes exactly 1/10 rather than the nearest binary fraction.
func FromFloat(f float64) (Rational, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Rational{}, invalid(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return Parse(strconv.FormatFloat(f, 'f', -1, 64))
}

func invalid(s string) error {
	return apperrors.NewWithContext(apperrors.ErrCodeInvalidRational,
		fmt.Sprintf("malformed rational %q", s), map[string]any{"value": s})
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Add returns a+b.
func (a Rational) Add(b Rational) Rational {
	return wrap(new(big.Rat).Add(a.val(), b.val()))
}

// Sub returns a-b.
func (a Rational) Sub(b Rational) Rational {
	return wrap(new(big.Rat).Sub(a.val(), b.val()))
}

// Mul returns a*b.
func (a Rational) Mul(b Rational) Rational {
	return wrap(new(big.Rat).Mul(a.val(), b.val()))
}

// Div returns a/b, failing with DivisionByZero when b is zero.
func (a Rational) Div(b Rational) (Rational, error) {
	if b.IsZero() {
		return Rational{}, apperrors.NewWithContext(apperrors.ErrCodeDivisionByZero,
			"division by zero", map[string]any{"dividend": a.String()})
	}
	return wrap(new(big.Rat).Quo(a.val(), b.val())), nil
}

// MustDiv is Div for divisors already known to be non-zero.
func (a Rational) MustDiv(b Rational) Rational {
	v, err := a.Div(b)
	if err != nil {
		panic(err)
	}
	return v
}

// Neg returns -a.
func (a Rational) Neg() Rational {
	return wrap(new(big.Rat).Neg(a.val()))
}

// Abs returns |a|.
func (a Rational) Abs() Rational {
	return wrap(new(big.Rat).Abs(a.val()))
}

// Cmp returns -1, 0 or +1 as a is less than, equal to or greater than b.
func (a Rational) Cmp(b Rational) int {
	return a.val().Cmp(b.val())
}

// Equal reports whether a == b.
func (a Rational) Equal(b Rational) bool { return a.Cmp(b) == 0 }

// Less reports whether a < b.
func (a Rational) Less(b Rational) bool { return a.Cmp(b) < 0 }

// Sign returns -1, 0 or +1.
func (a Rational) Sign() int { return a.val().Sign() }

// IsZero reports whether a == 0.
func (a Rational) IsZero() bool { return a.Sign() == 0 }

// IsPositive reports whether a > 0.
func (a Rational) IsPositive() bool { return a.Sign() > 0 }

// IsNegative reports whether a < 0.
func (a Rational) IsNegative() bool { return a.Sign() < 0 }

// IsInt reports whether the denominator is 1.
func (a Rational) IsInt() bool { return a.val().IsInt() }

// Num returns a copy of the numerator.
func (a Rational) Num() *big.Int { return new(big.Int).Set(a.val().Num()) }

// Denom returns a copy of the (positive) denominator.
func (a Rational) Denom() *big.Int { return new(big.Int).Set(a.val().Denom()) }

// Big returns a copy of the value as a *big.Rat.
func (a Rational) Big() *big.Rat { return new(big.Rat).Set(a.val()) }

// Float64 returns the nearest float64. Lossy; for display only.
func (a Rational) Float64() float64 {
	f, _ := a.val().Float64()
	return f
}

// String returns the exact canonical form: "n" for integers, "n/d"
// otherwise.
func (a Rational) String() string {
	return a.val().RatString()
}

// Decimal formats a rounded to at most places fractional digits, trimming
// trailing zeros.
func (a Rational) Decimal(places int) string {
	s := a.val().FloatString(places)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Min returns the smaller of a and b.
func Min(a, b Rational) Rational {
	if b.Less(a) {
		return b
	}
	return a
}

// Max returns the larger of a and b.
func Max(a, b Rational) Rational {
	if a.Less(b) {
		return b
	}
	return a
}

// Sum returns the sum of values.
func Sum(values ...Rational) Rational {
	total := new(big.Rat)
	for _, v := range values {
		total.Add(total, v.val())
	}
	return wrap(total)
}

// MarshalText implements encoding.TextMarshaler.
func (a Rational) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Rational) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// MarshalJSON encodes the exact value as a JSON string.
func (a Rational) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a JSON string or number.
func (a *Rational) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	return a.UnmarshalText([]byte(s))
}

// MarshalYAML encodes the exact value as a YAML scalar.
func (a Rational) MarshalYAML() (interface{}, error) {
	if num := a.val().Num(); a.IsInt() && num.IsInt64() {
		return num.Int64(), nil
	}
	return a.String(), nil
}

// UnmarshalYAML accepts any numeric or string scalar.
func (a *Rational) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return apperrors.NewWithContext(apperrors.ErrCodeInvalidRational,
			"rational must be a scalar", map[string]any{"line": value.Line})
	}
	return a.UnmarshalText([]byte(value.Value))
}
