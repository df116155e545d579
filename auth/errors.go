package auth

import "errors"

// Sentinel errors for token and client info decoding.
var (
	ErrTokenMalformed     = errors.New("auth: token malformed")
	ErrMissingClaim       = errors.New("auth: required claim missing")
	ErrInvalidClientInfo  = errors.New("auth: client info invalid")
	ErrMissingEnvironment = errors.New("auth: environment is required")
)
