package mathutil

import (
	"testing"

	"github.com/iwvelando/factory-planner/pkg/rational"
)

func TestCeil(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int64
	}{
		{"Whole number", "3", 3},
		{"Fraction rounds up", "36/125", 1},
		{"Just over", "32/5", 7},
		{"Zero", "0", 0},
		{"Negative rounds toward zero", "-3/2", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Ceil(rational.MustParse(tt.input))
			if result.Int64() != tt.expected {
				t.Errorf("Ceil(%s) = %s, expected %d", tt.input, result, tt.expected)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		total    string
		expected string
	}{
		{"Half", "1", "2", "50"},
		{"Third", "1", "3", "100/3"},
		{"Zero total", "5", "0", "0"},
		{"Whole", "4", "4", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Percentage(rational.MustParse(tt.value), rational.MustParse(tt.total))
			if result.String() != tt.expected {
				t.Errorf("Percentage(%s, %s) = %s, expected %s", tt.value, tt.total, result, tt.expected)
			}
		})
	}
}

func TestIsWhole(t *testing.T) {
	if !IsWhole(rational.FromInt(4)) {
		t.Errorf("IsWhole(4) = false, expected true")
	}
	if IsWhole(rational.MustParse("9/2")) {
		t.Errorf("IsWhole(9/2) = true, expected false")
	}
}
