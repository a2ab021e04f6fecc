package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"echoid/pkg/requestcontext"
)

// RequestID attaches a correlation ID to every request. An inbound
// X-Request-ID header is honored so callers can trace across services.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
