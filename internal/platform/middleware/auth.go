package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"echoid/pkg/requestcontext"
)

// SignerValidator validates a bearer token and returns the signer key it
// was minted for.
type SignerValidator interface {
	Validate(tokenString string) (string, error)
}

// RequireSigner authenticates the caller via a Bearer token and injects the
// signer key into the request context. Requests without a valid token get a
// 401 JSON response and never reach the handler.
func RequireSigner(validator SignerValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w, "missing bearer token")
				return
			}

			signer, err := validator.Validate(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithSignerKey(ctx, signer)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
