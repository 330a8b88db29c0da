package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRealIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote addr", nil, "192.0.2.1:1234", nil, "192.0.2.1"},
		{"spoofed forwarded for from untrusted peer", nil, "192.0.2.1:1234",
			map[string]string{"X-Forwarded-For": "198.51.100.1"}, "192.0.2.1"},
		{"spoofed real ip from untrusted peer", nil, "192.0.2.1:1234",
			map[string]string{"X-Real-IP": "203.0.113.9"}, "192.0.2.1"},
		{"forwarded chain through trusted proxies", []string{"10.0.0.0/8"}, "10.0.0.5:1234",
			map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"real ip from trusted proxy", []string{"10.0.0.0/8"}, "10.0.0.5:1234",
			map[string]string{"X-Real-IP": "203.0.113.9"}, "203.0.113.9"},
		{"garbage header from trusted proxy", []string{"10.0.0.0/8"}, "10.0.0.5:1234",
			map[string]string{"X-Forwarded-For": "nope"}, "10.0.0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, engine := gin.CreateTestContext(httptest.NewRecorder())
			require.NoError(t, engine.SetTrustedProxies(tt.trusted))
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, GetRealIP(c))
		})
	}
}
