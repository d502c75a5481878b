package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/rs/zerolog"
)

func newTestMiddleware(buf *bytes.Buffer, cfg *config.Config) *Middleware {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return New(nil, &logger.Logger{Logger: zerolog.New(buf)}, cfg)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		forwarded  string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"forwarded single", "203.0.113.9", "", "10.0.0.1:4321", "203.0.113.9"},
		{"forwarded chain keeps first hop", "203.0.113.9, 70.1.1.1, 10.0.0.1", "", "10.0.0.1:4321", "203.0.113.9"},
		{"real ip fallback", "", "198.51.100.7", "10.0.0.1:4321", "198.51.100.7"},
		{"remote addr with port", "", "", "192.0.2.4:56789", "192.0.2.4"},
		{"remote addr without port", "", "", "192.0.2.4", "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
			if got := IPKey(r); got != tt.want {
				t.Errorf("IPKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoggerIncludesRequestContext(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf, nil)

	// Same nesting as the router: RequestID outside Logger, so the access
	// log line carries the id minted for this request.
	h := m.RequestID(m.Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	r := httptest.NewRequest(http.MethodGet, "/scan/tok", nil)
	r.Header.Set("X-Request-ID", "req-123")
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	var line struct {
		RequestID string `json:"request_id"`
		ClientIP  string `json:"client_ip"`
		Status    int    `json:"status"`
		Path      string `json:"path"`
	}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("access log is not JSON: %v (%q)", err, buf.String())
	}
	if line.RequestID != "req-123" {
		t.Errorf("request_id = %q, want req-123", line.RequestID)
	}
	if line.ClientIP != "203.0.113.9" {
		t.Errorf("client_ip = %q, want first forwarded hop", line.ClientIP)
	}
	if line.Status != http.StatusNotFound {
		t.Errorf("status = %d, want %d", line.Status, http.StatusNotFound)
	}
	if line.Path != "/scan/tok" {
		t.Errorf("path = %q", line.Path)
	}
}

func TestRequestIDGenerated(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf, nil)

	var seen string
	h := m.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("no request id in context")
	}
	if got := rec.Header().Get("X-Request-ID"); got != seen {
		t.Errorf("response header id = %q, context id = %q", got, seen)
	}
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf, &config.Config{})

	called := false
	h := m.RateLimit(RateLimitConfig{Limit: 1, KeyFn: IPKey})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/settings", nil))

	if !called {
		t.Error("handler not reached with rate limiting disabled")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "" {
		t.Error("rate limit headers set while disabled")
	}
}
