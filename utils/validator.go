// utils/validator.go - Input validation
package utils

import "strings"

// ValidatePassword checks password strength before it is hashed. Email
// format is validated by the request binding, so no helper exists for it.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}

	return true, ""
}

// SanitizeInput trims surrounding whitespace and removes null bytes from
// user-authored text before it is stored.
func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
