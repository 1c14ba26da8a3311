package phone

import "strings"

const (
	CountryPrefix = "62"
	MinLength     = 11
)

// Normalize strips every non-digit and rewrites a leading trunk 0 to the country prefix.
// The bool reports whether the result can receive messages.
func Normalize(raw string) (string, bool) {
	var b strings.Builder
	b.Grow(len(raw) + 1)
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if ch < '0' || ch > '9' {
			continue
		}
		b.WriteByte(ch)
	}
	digits := b.String()
	if strings.HasPrefix(digits, "0") {
		digits = CountryPrefix + digits[1:]
	}
	return digits, Valid(digits)
}

// Valid reports whether an already normalized number is deliverable.
func Valid(digits string) bool {
	return strings.HasPrefix(digits, CountryPrefix) && len(digits) >= MinLength
}

// Deliverable re-derives deliverability from a stored value, which may be raw input.
func Deliverable(stored string) (string, bool) {
	if strings.TrimSpace(stored) == "" {
		return "", false
	}
	return Normalize(stored)
}
