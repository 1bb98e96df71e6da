package service

import (
	"errors"

	commonerrors "github.com/AlibekovAA/fin-ledger/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.ErrInvalidCredentials
	ErrEmailTaken         = commonerrors.ErrEmailTaken
)

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func AsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

var (
	ErrValidationNameLength     = &ValidationError{Message: "name must be between 1 and 64 characters"}
	ErrValidationEmailFormat    = &ValidationError{Message: "email is not valid"}
	ErrValidationPasswordLength = &ValidationError{Message: "password must be between 8 and 72 characters"}
)
