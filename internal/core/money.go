// Package core provides number parsing and display helpers.
//
// Amounts are plain float64 values in rupees. Input coming from forms is
// coerced rather than rejected, and formatting to two decimals only
// happens at display time.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes money shown to the stall owner.
const CurrencySymbol = "₹"

// ParseNumber converts form text into a number. Empty, malformed or
// non-finite input becomes 0, never an error.
//
// Examples:
//
//	ParseNumber("12.5")  -> 12.5
//	ParseNumber("12,5")  -> 12.5
//	ParseNumber(" 3 ")   -> 3
//	ParseNumber("abc")   -> 0
//	ParseNumber("7cups") -> 7
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", ".")
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return finite(f)
	}
	// Leading numeric prefix, the way form fields usually degrade.
	end := numericPrefix(s)
	if end == 0 {
		return 0
	}
	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits, dot := 0, false
	for ; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.' && !dot:
			dot = true
		default:
			if digits == 0 {
				return 0
			}
			return trimDot(s, i)
		}
	}
	if digits == 0 {
		return 0
	}
	return trimDot(s, i)
}

func trimDot(s string, end int) int {
	if end > 0 && s[end-1] == '.' {
		return end - 1
	}
	return end
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// FormatAmount renders v with exactly two decimals.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(finite(v)).StringFixed(2)
}

// FormatMoney renders v as rupees, e.g. "₹1234.50" or "-₹20.00".
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(finite(v)).Round(2)
	if d.IsNegative() {
		return "-" + CurrencySymbol + d.Abs().StringFixed(2)
	}
	return CurrencySymbol + d.StringFixed(2)
}

// FormatPercent renders a ratio as a percentage with two decimals.
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(finite(ratio)).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
