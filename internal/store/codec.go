package store

import (
	"encoding/json"
	"strings"

	apperrors "github.com/iwvelando/factory-planner/pkg/errors"
	"github.com/iwvelando/factory-planner/pkg/rational"
)

// RationalTag prefixes every rational stored in a saved plan payload so it
// cannot be confused with an ordinary string.
const RationalTag = "#r-"

// EncodeRational returns the tagged storage form of r, e.g. "#r-3/2".
func EncodeRational(r rational.Rational) string {
	return RationalTag + r.String()
}

// DecodeRational parses a tagged rational. Untagged input is rejected.
func DecodeRational(s string) (rational.Rational, error) {
	body, ok := strings.CutPrefix(s, RationalTag)
	if !ok {
		return rational.Zero, apperrors.NewWithContext(apperrors.ErrCodeInvalidRational,
			"stored rational is missing its tag", map[string]any{"value": s})
	}
	return rational.Parse(body)
}

// taggedRational is a rational that encodes with RationalTag in JSON.
type taggedRational rational.Rational

func (t taggedRational) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeRational(rational.Rational(t)))
}

func (t *taggedRational) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidRational, "stored rational must be a string", err)
	}
	v, err := DecodeRational(s)
	if err != nil {
		return err
	}
	*t = taggedRational(v)
	return nil
}
