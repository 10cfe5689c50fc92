package clientip

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:52311"
	assert.Equal(t, "203.0.113.7", RealClientIP(r))

	r.RemoteAddr = "203.0.113.7"
	assert.Equal(t, "203.0.113.7", RealClientIP(r))
}

func TestFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		trustProxy bool
		want       string
	}{
		{"ignores header by default", "198.51.100.1", false, "203.0.113.7"},
		{"first forwarded hop", "198.51.100.1, 10.0.0.2", true, "198.51.100.1"},
		{"no header", "", true, "203.0.113.7"},
		{"garbage header", "not-an-ip", true, "203.0.113.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "203.0.113.7:52311"
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			assert.Equal(t, tt.want, FromRequest(r, tt.trustProxy))
		})
	}
}
