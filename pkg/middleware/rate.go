// Package middleware provides the HTTP middleware chain.
package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shashiranjanraj/qrmenu/pkg/response"
)

// bucket tracks a fixed-window request count for one client.
type bucket struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

func (b *bucket) allow(max int, window time.Duration, now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.resetAt) {
		b.count = 0
		b.resetAt = now.Add(window)
	}

	b.count++
	return b.count <= max
}

// Limiter is a per-IP fixed-window rate limiter.
type Limiter struct {
	max    int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter starts a limiter with a background sweep that evicts expired
// buckets every window. Call Stop on shutdown.
func NewLimiter(max int, window time.Duration) *Limiter {
	l := &Limiter{
		max:     max,
		window:  window,
		buckets: map[string]*bucket{},
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for ip, b := range l.buckets {
				b.mu.Lock()
				expired := now.After(b.resetAt)
				b.mu.Unlock()
				if expired {
					delete(l.buckets, ip)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Stop ends the sweep goroutine.
func (l *Limiter) Stop() { l.once.Do(func() { close(l.stop) }) }

func (l *Limiter) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	b, ok := l.buckets[ip]
	if !ok {
		b = &bucket{resetAt: now.Add(l.window)}
		l.buckets[ip] = b
	}
	l.mu.Unlock()
	return b.allow(l.max, l.window, now)
}

// Middleware answers 429 once a client exceeds the limit.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
