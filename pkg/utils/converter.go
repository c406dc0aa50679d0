// Package utils provides utility functions for the Credit Risk Predictor.
// This file contains numeric parsing and formatting that follows the browser's
// Number semantics, so values typed into the form and values shown on the
// result panel read exactly as they did in the web client.
package utils

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ================================================================================
// Parsing
// ================================================================================

var decimalLiteral = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?$`)

// ParseNumber converts user text to a number the way Number(string) does.
// Surrounding whitespace is ignored and an empty string is 0. Anything that is
// not a numeric literal yields NaN; it is never reported as an error.
func ParseNumber(s string) float64 {
	s = strings.TrimFunc(s, isJSWhitespace)
	if s == "" {
		return 0
	}

	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if s[2] == '+' || s[2] == '-' {
				return math.NaN()
			}
			n, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return math.NaN()
			}
			f, _ := new(big.Float).SetInt(n).Float64()
			return f
		}
	}

	if !decimalLiteral.MatchString(s) {
		return math.NaN()
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

func isJSWhitespace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', '\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}

// ================================================================================
// Formatting
// ================================================================================

// FormatNumber renders a float the way String(number) does.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	// Go writes "1e+21" and "1.5e-07"; the exponent carries no padding in JS.
	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + sign + digits
}

// ToFixed renders f with a fixed number of fraction digits the way
// Number.prototype.toFixed does: the exact binary value is rounded and ties go
// away from zero. So ToFixed(0.25, 1) is "0.3" while ToFixed(1.005, 2) is "1.00".
func ToFixed(f float64, digits int) string {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= 1e21 {
		return FormatNumber(f)
	}
	if digits < 0 {
		digits = 0
	}

	// A float64 has at most 1074 fraction digits, so this expansion is exact.
	exact := new(big.Float).SetFloat64(f).Text('f', 1100)
	d, err := decimal.NewFromString(exact)
	if err != nil {
		return strconv.FormatFloat(f, 'f', digits, 64)
	}

	out := d.StringFixed(int32(digits))
	if f < 0 && !strings.HasPrefix(out, "-") {
		// toFixed keeps the sign of negative values that round to zero.
		out = "-" + out
	}
	return out
}

// Percent renders a ratio as a percentage with one fraction digit, without the % sign.
func Percent(ratio float64) string {
	return ToFixed(ratio*100, 1)
}
