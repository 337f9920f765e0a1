package api

import (
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"

	"github.com/mrwolf/kocicka/internal/config"
	"github.com/mrwolf/kocicka/internal/models"
)

// AuthMiddleware requires the configured client token as a bearer token.
// It lets everything through when no token is configured.
func AuthMiddleware(cfg *config.Server) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !cfg.AuthRequired() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization header", models.CodeUnauthorized)
				return
			}

			parts := strings.SplitN(auth, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				writeError(w, http.StatusUnauthorized, "invalid authorization format", models.CodeUnauthorized)
				return
			}

			if !cfg.TokenValid(parts[1]) {
				writeError(w, http.StatusUnauthorized, "invalid token", models.CodeUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequestIDHeader carries the request id back to the client.
const RequestIDHeader = "X-Request-Id"

// LoggingMiddleware logs HTTP requests and echoes the id set by middleware.RequestID.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := middleware.GetReqID(r.Context())
		if id != "" {
			w.Header().Set(RequestIDHeader, id)
		}
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Printf("[%s] %s %s %d %v", id, r.Method, r.URL.Path, wrapped.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// JSONContentType sets the Content-Type header to application/json
func JSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// RateLimiter is a sliding-window limiter keyed by client address.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	clock    clockwork.Clock
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// clock may be nil for the real clock.
func NewRateLimiter(limit int, window time.Duration, clock clockwork.Clock) *RateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		clock:    clock,
	}
}

// Allow checks if a request from the given key should be allowed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	cutoff := now.Add(-rl.window)

	var recent []time.Time
	for _, t := range rl.requests[key] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rl.limit {
		rl.requests[key] = recent
		return false
	}

	rl.requests[key] = append(recent, now)
	return true
}

// RateLimitMiddleware limits requests per client address. Run it after
// middleware.RealIP so proxies are accounted for.
func RateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(clientKey(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded", models.CodeRateLimit)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey drops the port so one client maps to one bucket.
func clientKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
