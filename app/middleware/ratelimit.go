package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tabrima/storefront/app/api"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const (
	// StrictWindow and StrictLimit bound login and operator endpoints.
	StrictWindow = 15 * time.Minute
	StrictLimit  = 10
)

// RateLimitConfig configures one limiter. Each limiter keeps its own counters.
type RateLimitConfig struct {
	Window  time.Duration
	Limit   int64
	Message string
	// TrustProxy keys clients by the X-Forwarded-For hop appended by the
	// reverse proxy instead of the peer address.
	TrustProxy bool
}

// RateLimit counts requests per client IP in memory and answers 429 once
// the limit for the current window is spent. Every response carries the
// X-RateLimit-* headers.
func RateLimit(cfg RateLimitConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	instance := limiter.New(
		memory.NewStore(),
		limiter.Rate{Period: cfg.Window, Limit: cfg.Limit},
	)

	message := cfg.Message
	if message == "" {
		message = "Too many requests, please try again later."
	}

	mw := stdlib.NewMiddleware(instance,
		stdlib.WithKeyGetter(func(r *http.Request) string {
			return ClientIP(r, cfg.TrustProxy)
		}),
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.WarnContext(r.Context(), "rate limit reached", "path", r.URL.Path)
			api.ErrorResponse(w, http.StatusTooManyRequests, message)
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			logger.ErrorContext(r.Context(), "rate limiter", "error", err)
			api.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		}),
	)
	return mw.Handler
}

// ClientIP returns the address requests are counted under. Behind the proxy
// only the last X-Forwarded-For entry is used: earlier entries come from the
// client and can be forged.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
			hops := strings.Split(xff[len(xff)-1], ",")
			if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
				return last
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Passthrough is the no-op middleware used where a limiter is disabled.
func Passthrough(next http.Handler) http.Handler {
	return next
}
