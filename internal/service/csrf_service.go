package service

import (
	"crypto/rand"
	"encoding/hex"
)

// CSRFService issues per-session CSRF tokens. The abuse guard compares them.
type CSRFService interface {
	GenerateToken() (string, error)
}

type csrfService struct{}

// NewCSRFService creates a new CSRF service
func NewCSRFService() CSRFService {
	return &csrfService{}
}

// GenerateToken returns 32 random bytes, hex encoded
func (s *csrfService) GenerateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
