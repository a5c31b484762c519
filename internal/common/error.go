// Package common defines shared constants and sentinel errors used across
// the journal client and the reference server. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Generic flow-control errors.
	ErrorInternal   = errors.New("internal error")
	ErrorValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// ErrReloginRequired means the session could not be recovered by a
	// token refresh and the user must authenticate again.
	ErrReloginRequired = errors.New("re-login required")

	ErrorUnauthorized = errors.New("unauthorized")
)
