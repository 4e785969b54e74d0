package domain

import "strings"

// NormalizePhone strips formatting and keeps the last ten digits.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

// IsValidPhone reports whether raw normalizes to exactly ten digits.
func IsValidPhone(raw string) bool {
	return len(NormalizePhone(raw)) == 10
}

// FormatPhoneDisplay renders a stored phone as (514) 123-4567.
func FormatPhoneDisplay(phone string) string {
	digits := NormalizePhone(phone)
	if len(digits) != 10 {
		return phone
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}
