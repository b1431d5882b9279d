package domain

import "errors"

// Authentication errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionRevoked  = errors.New("session revoked")
	ErrInvalidToken    = errors.New("invalid token")
)

// Tenant errors
var (
	ErrProfileNotFound = errors.New("tenant profile not found")
)
