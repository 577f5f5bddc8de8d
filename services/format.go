package services

import (
	"fmt"
	"strings"
)

// FormatAmount formats a monetary amount with thousands separators and
// exactly two decimal places, e.g. 1234567.8 → "1,234,567.80".
func FormatAmount(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)

	result := groupThousands(parts[0]) + "." + parts[1]
	if negative {
		result = "-" + result
	}
	return result
}

// FormatCoefficient formats a markup coefficient with four decimal
// places, the precision operators review anomalies at.
func FormatCoefficient(c float64) string {
	return fmt.Sprintf("%.4f", c)
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + "," + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + "," + result
}
