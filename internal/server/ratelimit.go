package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/seniordev0204/chatbot-go/internal/logging"
)

// defaultRateLimit is the sustained requests-per-second allowed per IP on
// rate-limited endpoints when the server config leaves it unset.
const defaultRateLimit = 10

// defaultRateBurst is the per-IP burst size when the server config leaves it
// unset. Embedding plus generation makes each /ask expensive, so bursts stay
// small.
const defaultRateBurst = 20

// evictInterval is how often idle visitor entries are swept.
const evictInterval = time.Minute

// staleAfter is how long an IP may stay idle before its entry is dropped.
const staleAfter = 5 * time.Minute

// visitor pairs a token bucket with the time its IP was last seen, so the
// sweep can drop buckets nobody is using.
type visitor struct {
	bucket *rate.Limiter
	seen   time.Time
}

// rateLimiter enforces a per-IP token-bucket limit on the endpoints that
// reach the LLM. It owns no goroutine of its own; the server runs evictLoop
// for the lifetime of Start so an unstarted server leaks nothing.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor

	rps   rate.Limit
	burst int
	log   *slog.Logger
}

func newRateLimiter(rps float64, burst int, log *slog.Logger) *rateLimiter {
	return &rateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		log:      log,
	}
}

// allow reports whether a request from ip may proceed, creating the token
// bucket on first sight and refreshing the last-seen time either way.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[ip]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.seen = time.Now()
	rl.mu.Unlock()

	return v.bucket.Allow()
}

// evictLoop sweeps stale visitors every evictInterval until ctx is cancelled.
func (rl *rateLimiter) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(evictInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictStale(time.Now().Add(-staleAfter))
		}
	}
}

// evictStale drops every visitor not seen since cutoff.
func (rl *rateLimiter) evictStale(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, v := range rl.visitors {
		if v.seen.Before(cutoff) {
			delete(rl.visitors, ip)
		}
	}
}

// middleware rejects over-limit requests with 429 and a Retry-After header,
// logging a WARN with the offending IP and path.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !rl.allow(ip) {
			logging.FromContext(r.Context()).Warn("rate limit exceeded",
				slog.String("ip", ip),
				slog.String("path", r.URL.Path),
			)
			w.Header().Set("Retry-After", "1")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr. X-Forwarded-For is deliberately
// ignored: the server binds to localhost and spoofable headers would let a
// client dodge its bucket.
func clientIP(r *http.Request) string {
	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}
