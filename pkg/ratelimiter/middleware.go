package ratelimiter

import (
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
)

const maxKeyLength = 64

// KeyFunc extracts a rate limit key from the request.
type KeyFunc func(r *http.Request) string

// Composite joins the non-empty keys of several KeyFuncs with ':'.
// Results longer than 64 chars are replaced by their FNV-1a hash.
func Composite(keyFuncs ...KeyFunc) KeyFunc {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(keyFuncs))
		for _, fn := range keyFuncs {
			if key := fn(r); key != "" {
				parts = append(parts, key)
			}
		}
		return JoinKey(parts...)
	}
}

// JoinKey builds a storage key from parts the same way Composite does.
func JoinKey(parts ...string) string {
	combined := strings.Join(parts, ":")
	if len(combined) <= maxKeyLength {
		return combined
	}
	h := fnv.New64a()
	h.Write([]byte(combined))
	return strconv.FormatUint(h.Sum64(), 36)
}

// ErrorResponder writes the response for a rejected or failed check.
// result is nil when err is set.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, result *Result, err error)

type middlewareOptions struct {
	responder ErrorResponder
}

// MiddlewareOption configures Middleware.
type MiddlewareOption func(*middlewareOptions)

// WithErrorResponder overrides the plain-text error responses.
func WithErrorResponder(fn ErrorResponder) MiddlewareOption {
	return func(o *middlewareOptions) {
		o.responder = fn
	}
}

func defaultResponder(w http.ResponseWriter, _ *http.Request, _ *Result, err error) {
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
}

// SetHeaders writes the X-RateLimit-* headers and, for a rejected attempt,
// Retry-After in whole seconds rounded up.
func SetHeaders(w http.ResponseWriter, result *Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(0, result.Remaining)))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

	if !result.Allowed() {
		retry := result.RetryAfter()
		secs := int(retry.Seconds())
		if retry > 0 && retry%1e9 != 0 {
			secs++
		}
		w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
	}
}

// Middleware counts every request against limiter under keyFunc(r).
// Requests with an empty key are passed through.
func Middleware(limiter *Limiter, keyFunc KeyFunc, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	o := middlewareOptions{responder: defaultResponder}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFunc(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := limiter.Allow(r.Context(), key)
			if err != nil {
				o.responder(w, r, nil, err)
				return
			}

			SetHeaders(w, result)
			if !result.Allowed() {
				o.responder(w, r, result, nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
