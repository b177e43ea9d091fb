package auth

import (
	"regexp"
)

// ValidationErrorKind enumerates local input failures. These are caught and
// shown inline; they never reach the network.
type ValidationErrorKind int

const (
	BadEmailFormat ValidationErrorKind = iota
	WeakPassword
	PasswordMismatch
)

// ValidationError reports a locally rejected input.
type ValidationError struct {
	Kind ValidationErrorKind
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case BadEmailFormat:
		return "invalid email address"
	case WeakPassword:
		return "password must be at least 6 characters"
	case PasswordMismatch:
		return "passwords do not match"
	}
	return "invalid input"
}

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateEmail checks the basic email shape.
func ValidateEmail(email string) error {
	if !emailRx.MatchString(email) {
		return &ValidationError{Kind: BadEmailFormat}
	}
	return nil
}

// ValidatePassword enforces the minimum password policy.
func ValidatePassword(secret string) error {
	if len(secret) < 6 {
		return &ValidationError{Kind: WeakPassword}
	}
	return nil
}

// ValidatePasswordPair checks a password against its confirmation.
func ValidatePasswordPair(secret, confirm string) error {
	if err := ValidatePassword(secret); err != nil {
		return err
	}
	if secret != confirm {
		return &ValidationError{Kind: PasswordMismatch}
	}
	return nil
}
