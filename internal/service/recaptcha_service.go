package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultRecaptchaEndpoint is Google's siteverify URL
const DefaultRecaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaService verifies reCAPTCHA tokens server side. It satisfies
// abuse.Verifier.
type RecaptchaService struct {
	secretKey string
	minScore  float64
	endpoint  string
	client    *http.Client
}

// NewRecaptchaService creates a new reCAPTCHA service. minScore only
// applies to v3 tokens, which carry a score.
func NewRecaptchaService(secretKey string, minScore float64) *RecaptchaService {
	return &RecaptchaService{
		secretKey: secretKey,
		minScore:  minScore,
		endpoint:  DefaultRecaptchaEndpoint,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// recaptchaResponse represents the response from Google's reCAPTCHA API
type recaptchaResponse struct {
	Success     bool     `json:"success"`
	Score       *float64 `json:"score,omitempty"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes,omitempty"`
}

// Verify checks token with the siteverify endpoint
func (s *RecaptchaService) Verify(ctx context.Context, token, remoteIP string) error {
	if s.secretKey == "" {
		return fmt.Errorf("reCAPTCHA secret key: %w", ErrNotConfigured)
	}
	if token == "" {
		return fmt.Errorf("reCAPTCHA token is required")
	}

	data := url.Values{}
	data.Set("secret", s.secretKey)
	data.Set("response", token)
	if remoteIP != "" {
		data.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create reCAPTCHA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to verify reCAPTCHA: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reCAPTCHA API returned status %d", resp.StatusCode)
	}

	var result recaptchaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to parse reCAPTCHA response: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("reCAPTCHA verification failed: %v", result.ErrorCodes)
	}

	if result.Score != nil && *result.Score < s.minScore {
		return fmt.Errorf("reCAPTCHA score too low: %.2f < %.2f", *result.Score, s.minScore)
	}

	return nil
}
