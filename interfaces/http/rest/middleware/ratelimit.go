package middleware

import (
	"net/http"
	"sync"
	"time"

	"knowflow-backend/pkg/common"
)

// clientBucket is one client's token bucket. Tokens refill continuously at
// the configured per-minute rate up to the burst capacity.
type clientBucket struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// RateLimiter enforces a per-client request rate, keyed by remote IP. Stale
// buckets are evicted by a background sweep so the map does not grow with
// every client ever seen.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*clientBucket
	perMinute float64
	burst     float64
}

// NewRateLimiter creates a limiter allowing perMinute sustained requests per
// client with a burst of the same size.
func NewRateLimiter(perMinute int) *RateLimiter {
	l := &RateLimiter{
		buckets:   make(map[string]*clientBucket),
		perMinute: float64(perMinute),
		burst:     float64(perMinute),
	}
	go l.sweep()
	return l
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = &clientBucket{tokens: l.burst, lastRefill: time.Now()}
		l.buckets[key] = b
	}
	l.mu.Unlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.lastRefill).Minutes() * l.perMinute
	if b.tokens > l.burst {
		b.tokens = l.burst
	}
	b.lastRefill = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-time.Hour)
		for key, b := range l.buckets {
			b.mu.Lock()
			if b.lastRefill.Before(cutoff) {
				delete(l.buckets, key)
			}
			b.mu.Unlock()
		}
		l.mu.Unlock()
	}
}

// Handler wraps the limiter as router middleware. Runs after RealIP so
// RemoteAddr identifies the client behind a proxy.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r.RemoteAddr) {
			common.RespondError(w, http.StatusTooManyRequests,
				"RATE_LIMITED", "request rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
