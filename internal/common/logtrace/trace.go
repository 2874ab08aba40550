package logtrace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type requestIdContextKey string

const requestIdKey = requestIdContextKey("requestId")

// RequestIDHeader is sent on every outgoing call so server logs can be correlated.
const RequestIDHeader = "X-Request-ID"

// WithRequestID returns a context carrying a fresh request id, unless ctx already has one.
func WithRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestIdFromContext(ctx); id != "" {
		return ctx, id
	}
	id := newRequestId()
	return context.WithValue(ctx, requestIdKey, id), id
}

// RequestIdFromContext extracts the request ID from the context.
// Returns an empty string if the context is nil or if no request ID is found.
func RequestIdFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	r, ok := ctx.Value(requestIdKey).(string)
	if !ok {
		return ""
	}
	return r
}

// newRequestId returns a UUIDv7, or a timestamp id if generation fails.
func newRequestId() string {
	u, err := uuid.NewV7()
	if err == nil {
		return u.String()
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
