package http

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long an unused client bucket is kept.
const idleLimiterTTL = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// rateLimiter keeps one token bucket per client.
type rateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

func newRateLimiter(r rate.Limit, burst int) *rateLimiter {
	return &rateLimiter{
		buckets: make(map[string]*bucket),
		rate:    r,
		burst:   burst,
		now:     time.Now,
	}
}

func (l *rateLimiter) allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for id, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleLimiterTTL {
				delete(l.buckets, id)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[clientID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[clientID] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

func (s *Server) limitRate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := clientID(r)
		if !s.limiter.allow(id) {
			s.logger.Warn("too many requests", "client_id", id)
			writeError(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
