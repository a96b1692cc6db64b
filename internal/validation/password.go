// Package validation holds the standalone input checks used by the auth
// and upload endpoints: password strength, email shape, username
// derivation and file-upload constraints.
package validation

import (
	"errors"
	"strings"
	"unicode"
)

// ValidatePassword enforces the password-strength rules applied when a
// user changes their password.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("This password is too short. It must contain at least 8 characters.")
	}
	// bcrypt silently truncates beyond 72 bytes
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	allDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	if allDigits {
		return errors.New("This password is entirely numeric.")
	}

	lower := strings.ToLower(password)
	common := []string{
		"password", "12345678", "qwerty", "admin", "letmein",
		"welcome", "iloveyou", "dragon", "master", "sunshine",
	}
	for _, pattern := range common {
		if strings.Contains(lower, pattern) {
			return errors.New("This password is too common.")
		}
	}

	return nil
}
