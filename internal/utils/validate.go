package utils

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

// MinPasswordLength is enforced at the edge; the hasher itself accepts any
// length.
const MinPasswordLength = 8

// ValidEmail reports whether s parses as a bare address (no display name).
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// NormalizeEmail lowercases for the case-insensitive uniqueness compare.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckPasswordStrength returns a field-specific message for the first rule
// the password breaks, or "" when it passes.
func CheckPasswordStrength(pw string) string {
	if len(pw) < MinPasswordLength {
		return fmt.Sprintf("password must be at least %d characters", MinPasswordLength)
	}

	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !upper:
		return "password must contain an uppercase letter"
	case !lower:
		return "password must contain a lowercase letter"
	case !digit:
		return "password must contain a digit"
	}
	return ""
}
