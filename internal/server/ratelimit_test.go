package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	atsErrors "atsmatch/internal/errors"
)

func TestRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		byAPIKey bool
		byIP     bool
		want     string
	}{
		{"api key header", map[string]string{"X-API-Key": "k1"}, true, true, "api:k1"},
		{"bearer token", map[string]string{"Authorization": "Bearer k2"}, true, false, "api:k2"},
		{"no key falls back to ip", nil, true, true, "ip:192.0.2.1"},
		{"key ignored when not keyed", map[string]string{"X-API-Key": "k1"}, false, true, "ip:192.0.2.1"},
		{"nothing enabled", nil, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/score", nil)
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getRateLimitKey(r, tt.byAPIKey, tt.byIP))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "garbage, 198.51.100.7, 10.0.0.1")
	assert.Equal(t, "198.51.100.7", getClientIP(r))

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Real-IP", "198.51.100.8")
	assert.Equal(t, "198.51.100.8", getClientIP(r))

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", getClientIP(r))
}

func TestLimiterWindowAndCleanup(t *testing.T) {
	m := NewRateLimiter(2, time.Second, 2, atsErrors.NewNopLogger())
	defer m.Close()

	assert.Equal(t, 2.0, m.GetStats()["rate_per_second"])
	assert.True(t, m.Allow("a"))
	assert.True(t, m.Allow("a"))
	assert.False(t, m.Allow("a"))
	assert.True(t, m.Allow("b"))

	m.cleanup(-time.Second)
	assert.Equal(t, 0, m.GetStats()["active_limiters"])

	m.Close()
}
