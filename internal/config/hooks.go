package config

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/iwvelando/factory-planner/pkg/rational"
	"github.com/mitchellh/mapstructure"
)

var rationalType = reflect.TypeOf(rational.Rational{})

// decodeHook extends viper's default hooks with rational decoding.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		RationalHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// RationalHookFunc decodes YAML integers, floats and strings ("3/2",
// "1.25") into rational.Rational. Floats go through their shortest decimal
// form, so 0.1 decodes to exactly 1/10.
func RationalHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != rationalType {
			return data, nil
		}
		switch v := data.(type) {
		case rational.Rational:
			return v, nil
		case string:
			return rational.Parse(v)
		case int:
			return rational.FromInt(int64(v)), nil
		case int64:
			return rational.FromInt(v), nil
		case int32:
			return rational.FromInt(int64(v)), nil
		case uint64:
			if v > 1<<63-1 {
				return rational.Parse(strconv.FormatUint(v, 10))
			}
			return rational.FromInt(int64(v)), nil
		case float64:
			return rational.FromFloat(v)
		case float32:
			return rational.Parse(strconv.FormatFloat(float64(v), 'f', -1, 32))
		case nil:
			return rational.Zero, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into a rational", data)
		}
	}
}
