package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/meridianprocure/storefront-backend/api/responses"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
	"github.com/meridianprocure/storefront-backend/pkg/logger"
)

type rateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// RateLimitByIP applies a fixed-window limit per client IP for the named
// scope. Limiter failures fail open: a Redis outage must not take quote
// submission down with it.
func RateLimitByIP(limiter rateLimiter, scope string, limit int64, window time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			allowed, count, err := limiter.FixedWindowAllow(ctx, scope+":"+clientIP(r), limit, window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithField(ctx, "error", err.Error()), "rate limiter unavailable")
				}
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				if logg != nil {
					lctx := logg.WithFields(ctx, map[string]any{"scope": scope, "count": count})
					logg.Warn(lctx, "rate limit exceeded")
				}
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
