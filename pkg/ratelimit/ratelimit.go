package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limiter is a simple fixed-window counter keyed by client IP
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*window // per-IP windows
	max     int                // requests per window
	per     time.Duration      // window size
}

type window struct {
	ts     time.Time // window start
	tokens int       // remaining requests
}

// New creates a new IP-based limiter allowing max requests per window
func New(max int, per time.Duration) *Limiter {
	return &Limiter{buckets: map[string]*window{}, max: max, per: per}
}

// Middleware enforces the rate limit before calling the next handler
func (r *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, _ := net.SplitHostPort(req.RemoteAddr)

		r.mu.Lock()
		b := r.buckets[ip]
		if b == nil || time.Since(b.ts) > r.per {
			// Start a new window
			b = &window{ts: time.Now(), tokens: r.max}
			r.buckets[ip] = b
		}

		if b.tokens <= 0 {
			r.mu.Unlock()
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}

		b.tokens--
		r.mu.Unlock()

		next.ServeHTTP(w, req)
	})
}

// Bucket is a token bucket for a single producer, refilled continuously
// at rate tokens per second up to burst. Used per websocket connection.
type Bucket struct {
	mu     sync.Mutex
	rate   float64
	burst  int
	tokens float64
	last   time.Time
}

func NewBucket(rate float64, burst int) *Bucket {
	return &Bucket{
		rate:   rate,
		burst:  burst,
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Allow consumes one token if available.
func (b *Bucket) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	b.last = now
	if b.tokens > float64(b.burst) {
		b.tokens = float64(b.burst)
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}
