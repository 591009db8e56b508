package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/infrastructure/redis"
	"github.com/baechuer/account-service/internal/logger"
)

type RateLimiter interface {
	Enabled() bool
	Allow(ctx context.Context, key string, limit int, window time.Duration) (redis.Decision, error)
}

// RateLimitConfig defines one fixed-window limit.
type RateLimitConfig struct {
	Scope  string // login, register, settings
	Limit  int
	Window time.Duration
}

// RateLimit enforces cfg through the shared Redis limiter. Without Redis it
// falls back to an in-process per-IP limiter so a single node still sheds
// abuse. Redis errors fail open.
func RateLimit(limiter RateLimiter, cfg RateLimitConfig, writeErr WriteErrFunc) func(http.Handler) http.Handler {
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.Scope == "" {
		cfg.Scope = "unknown"
	}
	if cfg.Limit <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	if limiter == nil || !limiter.Enabled() {
		return httprate.Limit(
			cfg.Limit,
			cfg.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				writeErr(w, r, rateLimited(cfg.Scope, cfg.Window))
			}),
		)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := redis.Key(cfg.Scope, userOrIP(r))

			dec, err := limiter.Allow(r.Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				logger.WithCtx(r.Context()).Warn().Err(err).
					Str("scope", cfg.Scope).
					Msg("rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			if !dec.Allowed {
				writeErr(w, r, rateLimited(cfg.Scope, dec.RetryAfter))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rateLimited(scope string, retry time.Duration) *domain.Error {
	err := domain.ErrRateLimited(scope)
	secs := int(retry.Round(time.Second).Seconds())
	if secs < 1 {
		secs = 1
	}
	err.Meta["retry_after"] = strconv.Itoa(secs)
	return err
}

// userOrIP prefers the signed-in user; guests are keyed by client IP.
func userOrIP(r *http.Request) string {
	if st, ok := SessionFromContext(r.Context()); ok && !st.IsGuest() {
		return "u:" + st.UserID
	}
	return "ip:" + clientIP(r)
}

// clientIP reads RemoteAddr, which chi's RealIP has already rewritten when
// the service runs behind a trusted proxy.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
