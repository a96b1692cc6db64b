package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks length and RFC 5322 shape.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("Enter a valid email address.")
	}
	return nil
}
