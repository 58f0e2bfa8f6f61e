package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/thefortthatholds/storefront/webutil"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL       = 15 * time.Minute
	limiterSweepInterval = 2 * time.Minute
)

// limiterStore keeps one token bucket per client key and drops buckets that
// have been idle past the TTL.
type limiterStore struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	rps       rate.Limit
	burst     int
	lastSweep time.Time
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		entries:   make(map[string]*limiterEntry),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastSweep: time.Now(),
	}
}

func (s *limiterStore) allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	if now.Sub(s.lastSweep) > limiterSweepInterval {
		cutoff := now.Add(-limiterIdleTTL)
		for k, ent := range s.entries {
			if ent.lastSeen.Before(cutoff) {
				delete(s.entries, k)
			}
		}
		s.lastSweep = now
	}

	ent, ok := s.entries[key]
	if !ok {
		ent = &limiterEntry{lim: rate.NewLimiter(s.rps, s.burst)}
		s.entries[key] = ent
	}
	ent.lastSeen = now
	s.mu.Unlock()

	return ent.lim.Allow()
}

// RateLimit returns middleware enforcing a per-client token bucket, keyed by
// remote IP (after chi's RealIP middleware has resolved it).
func RateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	store := newLimiterStore(rps, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !store.allow(clientKey(r)) {
				w.Header().Set(webutil.HeaderRetryAfter, "1")
				webutil.RespondWithError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
