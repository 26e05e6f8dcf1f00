// Package core holds the money representation, the owner-scoped domain
// entities and the derived-metrics functions shared by every other package.
//
// Monetary values are integer cents end to end. Conversion to or from a
// decimal representation happens exactly once, at user-input ingestion;
// every later step is integer arithmetic.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount expressed in integer minor units (cents).
type Money struct {
	Cents int64
}

// Validate enforces positivity. Prices and financial-entry amounts carry
// their sign in the entry type, never in the numeric value.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. It accepts both dot (12.34) and
// comma (12,34) decimal separators. The result is always positive cents;
// invalid formats, signs and zero amounts yield ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34") -> 1234, nil
//	ParseDecimalToCents("12,34") -> 1234, nil
//	ParseDecimalToCents("12.345") -> 1234, nil (rounds down)
//	ParseDecimalToCents("12.346") -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		// Only positive values allowed
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on third
	var fracCents int64
	if len(fracPart) > 0 {
		d1 := int64(fracPart[0] - '0')
		fracCents = d1 * 10
		if len(fracPart) > 1 {
			d2 := int64(fracPart[1] - '0')
			fracCents += d2
			if len(fracPart) > 2 {
				if fracPart[2] >= '5' {
					fracCents++
				}
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// CentsFromFloat converts a decimal amount to cents, rounding half away
// from zero. NaN, infinities and negative values yield ErrInvalidAmount
// rather than a corrupted integer.
func CentsFromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v < 0 {
		return 0, ErrInvalidAmount
	}
	scaled := math.Round(v * 100)
	if scaled > float64(math.MaxInt64) {
		return 0, ErrInvalidAmount
	}
	return int64(scaled), nil
}

// Formatter renders cents as a currency string. Symbol and separator come
// from configuration, not from the call site.
type Formatter struct {
	Symbol       string
	DecimalComma bool
}

// Format is total over any int64, including negative values.
func (f Formatter) Format(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	sep := "."
	if f.DecimalComma {
		sep = ","
	}
	units := strconv.FormatInt(cents/100, 10)
	rem := cents % 100
	s := units + sep + string([]byte{byte('0' + rem/10), byte('0' + rem%10)})
	if neg {
		return "-" + f.Symbol + s
	}
	return f.Symbol + s
}
