package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"
)

const clientIdleExpiry = 5 * time.Minute

// rateLimiter applies a per-client token bucket. Each client starts with a
// full burst; tokens refill continuously at the configured rate.
type rateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*bucket
	rps       float64
	burst     float64
	lastSweep time.Time
	now       func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

func newRateLimiter(rps float64, burst int) *rateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &rateLimiter{
		clients: make(map[string]*bucket),
		rps:     rps,
		burst:   float64(burst),
		now:     time.Now,
	}
}

// allow consumes one token for the client. When the bucket is empty it
// reports the wait until the next token becomes available.
func (rl *rateLimiter) allow(client string) (time.Duration, bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	b, ok := rl.clients[client]
	if !ok {
		b = &bucket{tokens: rl.burst, last: now}
		rl.clients[client] = b
	} else {
		b.tokens = math.Min(rl.burst, b.tokens+now.Sub(b.last).Seconds()*rl.rps)
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	wait := time.Duration((1 - b.tokens) / rl.rps * float64(time.Second))
	return wait, false
}

// sweep drops buckets idle long enough to have refilled completely.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < time.Minute {
		return
	}
	rl.lastSweep = now
	for client, b := range rl.clients {
		if now.Sub(b.last) > clientIdleExpiry {
			delete(rl.clients, client)
		}
	}
}

func (s *Server) rateLimit(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		wait, ok := s.limiter.allow(getClientIP(r))
		if !ok {
			rateLimitHits.Inc()
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(int(s.limiter.burst)))
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, retry later")
			return
		}
		next(w, r)
	}
}
