package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// sweepAt bounds the window map: once it grows past this many entries
// the next request pays for a scan that evicts expired windows.
const sweepAt = 4096

// Limiter caps requests per key over a fixed window.
type Limiter struct {
	mu   sync.Mutex
	seen map[string]*window
	max  int
	per  time.Duration
}

type window struct {
	start time.Time
	left  int
}

// New allows max requests per key per window.
func New(max int, per time.Duration) *Limiter {
	return &Limiter{seen: make(map[string]*window), max: max, per: per}
}

// Allow reports whether key may make a request now.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.seen) > sweepAt {
		for k, w := range l.seen {
			if now.Sub(w.start) > l.per {
				delete(l.seen, k)
			}
		}
	}

	w := l.seen[key]
	if w == nil || now.Sub(w.start) > l.per {
		w = &window{start: now, left: l.max}
		l.seen[key] = w
	}
	if w.left <= 0 {
		return false
	}
	w.left--
	return true
}

// Middleware enforces the limit per client IP before calling next.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.Allow(ip) {
			http.Error(w, "rate limit", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
