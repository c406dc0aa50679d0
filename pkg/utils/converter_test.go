package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"", 0},
		{"   ", 0},
		{"50000", 50000},
		{" 35 ", 35},
		{" 12.5\t", 12.5},
		{"-3", -3},
		{"+4", 4},
		{".5", 0.5},
		{"5.", 5},
		{"1e3", 1000},
		{"1.5E-2", 0.015},
		{"0x1A", 26},
		{"0b101", 5},
		{"0o17", 15},
		{"Infinity", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"1e400", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseNumber(tt.in))
		})
	}
}

func TestParseNumber_NaN(t *testing.T) {
	for _, in := range []string{"abc", "12abc", "1,000", "0x", "0x-1", "-0x1A", "1e", ".", "infinity", "NaN", "1 2"} {
		t.Run(in, func(t *testing.T) {
			assert.True(t, math.IsNaN(ParseNumber(in)), "expected NaN for %q", in)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{math.Copysign(0, -1), "0"},
		{35, "35"},
		{50000, "50000"},
		{-1.5, "-1.5"},
		{0.1, "0.1"},
		{1e21, "1e+21"},
		{1.5e-7, "1.5e-7"},
		{123456789012, "123456789012"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestToFixed(t *testing.T) {
	tests := []struct {
		name   string
		in     float64
		digits int
		want   string
	}{
		{"tie rounds up", 0.25, 1, "0.3"},
		{"binary value below tie", 1.005, 2, "1.00"},
		{"three quarters", 0.75, 1, "0.8"},
		{"whole", 25, 1, "25.0"},
		{"float noise", 0.2 * 100, 1, "20.0"},
		{"zero", 0, 1, "0.0"},
		{"negative", -10.04, 1, "-10.0"},
		{"negative to zero keeps sign", -0.04, 1, "-0.0"},
		{"no digits", 2.5, 0, "3"},
		{"nan", math.NaN(), 1, "NaN"},
		{"infinity", math.Inf(1), 1, "Infinity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToFixed(tt.in, tt.digits))
		})
	}
}

func TestPercent(t *testing.T) {
	assert.Equal(t, "75.0", Percent(0.75))
	assert.Equal(t, "5.0", Percent(0.05))
	assert.Equal(t, "12.3", Percent(0.1234))
	assert.Equal(t, "NaN", Percent(math.NaN()))
}
