// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services and handlers consume them. Keeping
// the package free of net/http lets services import only what they need.
//
// Usage in services (read values):
//
//	signer := requestcontext.SignerKey(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithSignerKey(ctx, signer)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	signerKeyKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// SignerKey retrieves the authenticated signer key from the context.
// Returns the empty string if no signer was authenticated.
func SignerKey(ctx context.Context) string {
	if signer, ok := ctx.Value(signerKeyKey{}).(string); ok {
		return signer
	}
	return ""
}

// WithSignerKey injects an authenticated signer key into the context.
func WithSignerKey(ctx context.Context, signer string) context.Context {
	return context.WithValue(ctx, signerKeyKey{}, signer)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from the context, falling back to
// time.Now for non-HTTP contexts (workers, CLI, tests that don't pin time).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins a specific time in the context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
