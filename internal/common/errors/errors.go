package commonerrors

import "errors"

var (
	ErrMissingRequiredEnv = errors.New("missing required environment variable")
	ErrInvalidJWTSecret   = errors.New("JWT_SECRET must be at least 32 bytes")

	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrStatementNotFound  = errors.New("statement not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidAmount      = errors.New("amount must be a positive integer")
	ErrInvalidOperation   = errors.New("unknown operation type")
	ErrDescriptionTooLong = errors.New("description exceeds maximum length")

	ErrInvalidToken = errors.New("token is not valid")
	ErrEmptyUUID    = errors.New("uuid cannot be empty")
)
