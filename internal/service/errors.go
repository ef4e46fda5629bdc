package service

import "errors"

// Sentinel errors returned by AuthService. The handler layer alone maps
// these to HTTP statuses; the service never sees HTTP. Messages are generic
// on purpose: a caller must not be able to tell "no such user" from "wrong
// password", or expiry from tampering.
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrInvalidResetToken   = errors.New("invalid or expired token")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUserNotFound        = errors.New("user not found")
)
