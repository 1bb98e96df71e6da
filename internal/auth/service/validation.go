package service

import (
	"regexp"

	"github.com/AlibekovAA/fin-ledger/internal/common/constants"
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type CredentialValidator struct{}

func NewCredentialValidator() CredentialValidator {
	return CredentialValidator{}
}

func (cv CredentialValidator) Validate(name, email, password string) error {
	return validateRegistration(name, email, password)
}

func validateRegistration(name, email, password string) error {
	if len(name) < constants.NameMinLength || len(name) > constants.NameMaxLength {
		return ErrValidationNameLength
	}

	if err := validateLogin(email, password); err != nil {
		return err
	}

	return nil
}

func validateLogin(email, password string) error {
	if len(email) > constants.EmailMaxLength || !emailRegex.MatchString(email) {
		return ErrValidationEmailFormat
	}

	if len(password) < constants.PasswordMinLength || len(password) > constants.PasswordMaxLength {
		return ErrValidationPasswordLength
	}

	return nil
}
