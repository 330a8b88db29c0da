package utils

import (
	"testing"
)

func TestCookieDomain(t *testing.T) {
	tests := []struct {
		production bool
		site       string
		expected   string
	}{
		{false, "https://www.example.com", ""},
		{true, "", ""},
		{true, "https://www.example.com", ".example.com"},
		{true, "example.com", ".example.com"},
		{true, "https://go.marketing.example.co", ".example.co"},
		{true, "http://localhost:8080", ""},
		{true, "http://127.0.0.1:8080", ""},
		{true, "http://[::1]:8080", ""},
		{true, "https://intranet", "intranet"},
	}

	for _, tt := range tests {
		if got := CookieDomain(tt.production, tt.site); got != tt.expected {
			t.Errorf("CookieDomain(%v, %q) = %q; want %q", tt.production, tt.site, got, tt.expected)
		}
	}
}
