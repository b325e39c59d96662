package middleware

import (
	"net/http"

	apperrors "medcompanion/pkg/errors"
	httputil "medcompanion/pkg/http"
)

// MaxRequestSize caps the request body. Declared oversize bodies are refused
// up front; undeclared ones fail when the handler reads past the limit.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.PayloadTooLarge(limit))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
