package api

import (
	"net/http"
	"sync"

	"github.com/star/stardiff/internal/httputil"
)

// inflightLimiter caps concurrent comparisons per client IP and globally.
// Propagation and report rendering are CPU bound, so requests beyond the
// caps are refused rather than queued.
type inflightLimiter struct {
	mu       sync.Mutex
	active   map[string]int
	total    int
	maxPerIP int
	maxTotal int
}

func newInflightLimiter(maxPerIP, maxTotal int) *inflightLimiter {
	return &inflightLimiter{
		active:   make(map[string]int),
		maxPerIP: maxPerIP,
		maxTotal: maxTotal,
	}
}

// acquire registers a comparison for ip. It returns false when the IP or
// global limit has been reached. A non-positive limit disables that check.
func (l *inflightLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.maxTotal > 0 && l.total >= l.maxTotal {
		return false
	}
	if l.maxPerIP > 0 && l.active[ip] >= l.maxPerIP {
		return false
	}

	l.active[ip]++
	l.total++
	return true
}

func (l *inflightLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.active[ip]--
	l.total--
	if l.active[ip] <= 0 {
		delete(l.active, ip)
	}
}

func (l *inflightLimiter) count(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active[ip]
}

// limit wraps a comparison handler with the in-flight caps.
func (h *handlers) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := httputil.ClientIP(r, h.trustProxy)
		if !h.limiter.acquire(ip) {
			h.logger.Warn("comparison limit exceeded", "remote_ip", ip, "active", h.limiter.count(ip))
			w.Header().Set("Retry-After", "1")
			httputil.WriteError(w, http.StatusTooManyRequests, "too many concurrent comparisons")
			return
		}
		defer h.limiter.release(ip)
		next(w, r)
	}
}
