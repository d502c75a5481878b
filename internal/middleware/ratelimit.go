package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig holds configuration for a specific rate limit
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	KeyFn  func(*http.Request) string
}

// RateLimit guards the administrative API with a redis counter per key and
// window. The counter and its TTL are set in one pipelined round trip, so a
// key can never be left without an expiry. The issuance endpoint has its own
// in-memory sliding-window limiter and does not go through here.
func (m *Middleware) RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.cfg.AdminAPI.RateLimitEnabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			key := "ratelimit:" + cfg.KeyFn(r)

			count, ttl, err := m.rdb.IncrWindow(ctx, key, cfg.Window)
			if err != nil {
				// Redis trouble must not take the admin API down with it.
				m.log.Error().Err(err).Msg("rate limit counter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			remaining := cfg.Limit - int(count)
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

			if int(count) > cfg.Limit {
				w.Header().Set("Retry-After", strconv.FormatInt(int64(ttl.Seconds()), 10))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"status":"error","message":"Too many requests. Please try again later."}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPKey returns the client IP address as the rate limit key
func IPKey(r *http.Request) string {
	return ClientIP(r)
}

// ClientIP resolves the originating address, preferring proxy headers.
// X-Forwarded-For may carry a chain; the first hop is the client.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
