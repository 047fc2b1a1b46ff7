package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// fixed-window counter per client address
type rateWindow struct {
	count   int
	resetAt time.Time
}

// rateLimiter tracks fixed windows per client key. Stale windows are swept
// at most once per window length so the map stays bounded by the number of
// clients seen within the last window, not the process lifetime.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	windows   map[string]*rateWindow
	lastSweep time.Time
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*rateWindow),
	}
}

// allow counts one request for key and reports whether it stays within the
// limit for the current window.
func (l *rateLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.window {
		for k, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &rateWindow{resetAt: now.Add(l.window)}
		l.windows[key] = w
	}
	w.count++
	return w.count <= l.limit
}

func (l *rateLimiter) middleware(message string) gin.HandlerFunc {
	retryAfter := strconv.Itoa(int(l.window.Seconds()))
	return func(c *gin.Context) {
		if !l.allow(clientIP(c.ClientIP())) {
			c.Header("Retry-After", retryAfter)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": message,
			})
			return
		}
		c.Next()
	}
}

// RateLimit throttles requests per client IP within a fixed one-minute
// window. It protects the public admission endpoint from a single abusive
// source regardless of which embed token it targets, independently of the
// per-agent quota.
func RateLimit(limitPerMinute int) gin.HandlerFunc {
	return newRateLimiter(limitPerMinute, time.Minute).
		middleware("Too many session requests. Please wait a moment and try again.")
}

// GlobalRateLimit caps total request volume per client IP across every
// route, a coarse backstop behind the tighter embed limiter.
func GlobalRateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return newRateLimiter(limit, window).
		middleware("Too many requests, please try again later")
}

// Normalize IPv6-mapped IPv4 etc.
func clientIP(raw string) string {
	if raw == "" {
		return "anonymous"
	}
	if ip := net.ParseIP(raw); ip != nil {
		return ip.String()
	}
	return raw
}
