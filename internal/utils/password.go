package utils

import (
	"errors"
	"fmt"
	"regexp"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 12

var (
	ErrPasswordTooShort      = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	ErrPasswordNoUppercase   = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLowercase   = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoDigit       = errors.New("password must contain at least one digit")
	ErrPasswordNoSpecialChar = errors.New("password must contain at least one special character")
)

var specialCharRegex = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>\[\]\\/_\-+=~` + "`" + `';]`)

// ValidatePasswordStrength reports every rule the publisher password breaks.
func ValidatePasswordStrength(password string) error {
	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	var errs []error
	if len(password) < MinPasswordLength {
		errs = append(errs, ErrPasswordTooShort)
	}
	if !hasUpper {
		errs = append(errs, ErrPasswordNoUppercase)
	}
	if !hasLower {
		errs = append(errs, ErrPasswordNoLowercase)
	}
	if !hasDigit {
		errs = append(errs, ErrPasswordNoDigit)
	}
	if !specialCharRegex.MatchString(password) {
		errs = append(errs, ErrPasswordNoSpecialChar)
	}
	return errors.Join(errs...)
}

// HashPassword checks strength and returns the bcrypt hash used as
// ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
