package middleware

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/sevigo/code-reviewer/internal/metrics"
	"github.com/sevigo/code-reviewer/internal/ratelimit"
)

// RateLimit answers 429 once a client address exhausts its token bucket.
// The key is the host of RemoteAddr, which is only rewritten from forwarding
// headers when the router trusts a proxy.
func RateLimit(l *ratelimit.Limiter, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r.RemoteAddr)
			if !l.Allow(key) {
				m.ObserveRejected("rate_limit")
				logger.Warn("rate limit exceeded", "client", key, "path", r.URL.Path)
				http.Error(w, "Too many requests. Please slow down.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientKey(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
