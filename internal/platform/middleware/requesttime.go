package middleware

import (
	"net/http"
	"time"

	"echoid/pkg/requestcontext"
)

// RequestTime pins a single observation of the wall clock for the whole
// request so every layer sees the same "now".
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
