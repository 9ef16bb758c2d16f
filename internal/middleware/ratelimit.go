package middleware

import (
	"fmt"
	"net"
	"net/http"

	"github.com/turingcompletejeff/blogsite/internal/middleware/ratelimiter"
	"github.com/turingcompletejeff/blogsite/internal/utils"
)

// RateLimit throttles requests per identity with a token bucket. Admins
// bypass the limit when a previous middleware already authenticated them.
func RateLimit(rl *ratelimiter.Limiter, identify func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user := UserFromContext(r); user != nil && user.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			identity, err := identify(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP extracts the client IP from RemoteAddr. Proxy headers are not
// consulted here; the RealIP middleware already normalized RemoteAddr.
func ClientIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may already be a bare IP.
		ip = r.RemoteAddr
	}

	if net.ParseIP(ip) == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	return ip, nil
}
