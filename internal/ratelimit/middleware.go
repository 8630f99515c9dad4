package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	limiter "github.com/ulule/limiter/v3"

	"github.com/noah-isme/vetpos/internal/common"
)

// Config describes how to derive a rate limit key.
type Config struct {
	Key  func(*http.Request) string
	Rate limiter.Rate
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Store   limiter.Store
	Config  Config
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface. Store failures
// let the request through.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Store == nil || h.Config.Key == nil || h.Config.Rate.Limit <= 0 || h.Config.Rate.Period <= 0 {
		return next
	}
	lim := limiter.New(h.Store, h.Config.Rate)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lctx, err := lim.Get(r.Context(), h.Config.Key(r))
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		headers.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

		if lctx.Reached {
			retryAfter := int(time.Until(time.Unix(lctx.Reset, 0)).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
