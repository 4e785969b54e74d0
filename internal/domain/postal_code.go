package domain

import (
	"regexp"
	"strings"
)

var postalCodePattern = regexp.MustCompile(`(?i)^[A-Z]\d[A-Z]\s?\d[A-Z]\d$`)

// IsValidPostalCode reports whether raw is a Canadian postal code.
func IsValidPostalCode(raw string) bool {
	return postalCodePattern.MatchString(strings.TrimSpace(raw))
}

// NormalizePostalCode upper-cases and renders a valid code as "A1A 1A1".
// Invalid input is returned trimmed and unchanged.
func NormalizePostalCode(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !IsValidPostalCode(trimmed) {
		return trimmed
	}
	compact := strings.ToUpper(strings.ReplaceAll(trimmed, " ", ""))
	return compact[:3] + " " + compact[3:]
}
