// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Limiter counts attempts per key in fixed windows that start with the first
// attempt. It is safe for concurrent use.
type Limiter struct {
	limit  int
	window time.Duration
	c      *cache.Cache
}

// New allows limit attempts per key every window.
func New(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		c:      cache.New(window, 2*window),
	}
}

// Allow records an attempt for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	if err := l.c.Add(key, 1, l.window); err == nil {
		return true
	}
	n, err := l.c.IncrementInt(key, 1)
	if err != nil {
		// Expired between Add and Increment; start a new window.
		l.c.Set(key, 1, l.window)
		return true
	}
	return n <= l.limit
}

// Remaining returns how many attempts key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	v, ok := l.c.Get(key)
	if !ok {
		return l.limit
	}
	if left := l.limit - v.(int); left > 0 {
		return left
	}
	return 0
}

// Reset clears key.
func (l *Limiter) Reset(key string) {
	l.c.Delete(key)
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles sign-in attempts per client IP and per national ID.
type LoginLimiter struct {
	byIP *Limiter
	byID *Limiter
}

// Default login limits.
const (
	DefaultIPAttempts = 20
	DefaultIPWindow   = time.Minute
	DefaultIDAttempts = 5
	DefaultIDWindow   = 5 * time.Minute
)

// NewLoginLimiter uses the default limits.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(DefaultIPAttempts, DefaultIPWindow, DefaultIDAttempts, DefaultIDWindow)
}

func NewLoginLimiterWithConfig(ipLimit int, ipWindow time.Duration, idLimit int, idWindow time.Duration) *LoginLimiter {
	return &LoginLimiter{
		byIP: New(ipLimit, ipWindow),
		byID: New(idLimit, idWindow),
	}
}

// Check records an attempt and returns false with a user-facing reason when
// either limit is exceeded.
func (ll *LoginLimiter) Check(r *http.Request, nationalID string) (bool, string) {
	if !ll.byIP.Allow(ClientIP(r)) {
		return false, "too many sign-in attempts; wait a minute and try again"
	}
	if nationalID != "" && !ll.byID.Allow(nationalID) {
		return false, "too many sign-in attempts for this national ID; wait a few minutes"
	}
	return true, ""
}

// ResetNationalID clears the per-ID counter after a successful sign-in.
func (ll *LoginLimiter) ResetNationalID(nationalID string) {
	if nationalID != "" {
		ll.byID.Reset(nationalID)
	}
}
