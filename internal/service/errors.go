package service

import "errors"

// Sentinel errors for service layer
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrTooManySessions = errors.New("too many live sessions")
	ErrNotConfigured   = errors.New("not configured")
)
