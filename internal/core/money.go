// Package core holds the expense record model and its derived aggregations.
//
// This file contains amount parsing and currency conversion helpers. Amounts
// are kept as float64 to match the persisted record shape; rounding is a
// display-layer concern and never applied here.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts a user-entered decimal string into a THB amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and only
// positive, finite values. An empty, unparsable, zero, or negative amount
// returns ErrInvalidAmount; the submit flow treats that as a no-op.
func ParseAmount(s string) (float64, error) {
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
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ToDisplayCurrency converts a THB amount to HKD at the given rate.
// Pure multiplication, no rounding.
func ToDisplayCurrency(amountTHB, rate float64) float64 {
	return amountTHB * rate
}

// FormatTHB renders a THB amount for display with up to two decimals,
// dropping the fraction when the amount is whole.
func FormatTHB(v float64) string {
	if v == math.Trunc(v) {
		return "฿" + strconv.FormatFloat(v, 'f', 0, 64)
	}
	return "฿" + strconv.FormatFloat(v, 'f', 2, 64)
}

// FormatHKD renders an HKD amount for display with one decimal.
func FormatHKD(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', 1, 64)
}
