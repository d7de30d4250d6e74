package utils

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrConcurrentUpdate    = errors.New("transaction was modified concurrently")
	ErrClientNotFound      = errors.New("client not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrOTPExpired          = errors.New("otp expired or not requested")
	ErrForbidden           = errors.New("forbidden")
	ErrDatabaseError       = errors.New("database error")
)
