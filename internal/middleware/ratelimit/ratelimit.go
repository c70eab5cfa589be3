// Package ratelimit bounds how often one client may hit the expensive
// endpoints (uploads and spreadsheet exports).
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Limiter is a fixed one-minute window counter per client key.
type Limiter struct {
	mu      sync.Mutex
	clients map[string]*window
	perMin  int
	now     func() time.Time
}

type window struct {
	start    time.Time
	requests int
}

// NewLimiter allows perMinute requests per client; perMinute <= 0 disables
// limiting.
func NewLimiter(perMinute int) *Limiter {
	return &Limiter{clients: make(map[string]*window), perMin: perMinute, now: time.Now}
}

// Allow records a request from key and reports whether it is within budget.
func (l *Limiter) Allow(key string) bool {
	if l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.clients[key]
	if !ok || now.Sub(w.start) >= time.Minute {
		l.clients[key] = &window{start: now, requests: 1}
		return true
	}
	w.requests++
	return w.requests <= l.perMin
}

// RetryAfter is the time until key's window resets.
func (l *Limiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.clients[key]
	if !ok {
		return 0
	}
	d := time.Minute - l.now().Sub(w.start)
	if d < 0 {
		return 0
	}
	return d
}

// CleanExpired forgets clients whose window ended, so the limiter can be
// registered with a cache sweeper.
func (l *Limiter) CleanExpired() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	n := 0
	for k, w := range l.clients {
		if now.Sub(w.start) >= time.Minute {
			delete(l.clients, k)
			n++
		}
	}
	return n
}

// ActiveClients returns the number of currently tracked clients
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// Middleware rejects over-budget requests with 429, or calls onLimit when
// given.
func (l *Limiter) Middleware(extractIP func(*http.Request) string, onLimit func(http.ResponseWriter, *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractIP(r)
			if !l.Allow(key) {
				secs := int(l.RetryAfter(key).Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				if onLimit != nil {
					onLimit(w, r)
				} else {
					http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				}
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
