package auth

import "errors"

// General authentication errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAccount     = errors.New("account record violates invariants")
)

// Reset token errors
var ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")

// OAuth errors
var (
	ErrInvalidState      = errors.New("oauth: invalid or expired state")
	ErrStateNotFound     = errors.New("oauth: state not found")
	ErrInvalidCode       = errors.New("oauth: invalid authorization code")
	ErrIncompleteProfile = errors.New("oauth: provider profile is missing required fields")
)
