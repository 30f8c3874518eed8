package middleware

import (
	"net/http/httptest"
	"testing"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		forwarded  string
		want       string
	}{
		{"remote addr with port", "203.0.113.1:54321", "", "203.0.113.1"},
		{"forwarded single", "10.0.0.1:1234", "198.51.100.7", "198.51.100.7"},
		{"forwarded chain takes first valid", "10.0.0.1:1234", "198.51.100.7, 10.0.0.2", "198.51.100.7"},
		{"forwarded garbage skipped", "10.0.0.1:1234", "not-an-ip, 198.51.100.9", "198.51.100.9"},
		{"ipv6 remote", "[2001:db8::1]:443", "", "2001:db8::1"},
		{"bare remote without port", "203.0.113.5", "", "203.0.113.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if got := ClientIP(r); got != tt.want {
				t.Fatalf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
