package httpx

import (
	"context"
	"net/http"

	"bookgraph/internal/auth"
)

type contextKey string

const (
	requestIDKey contextKey = "requestID"
	accessKey    contextKey = "accessEntry"
)

// ContextWithRequestID returns a new context carrying the request ID.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// RequestIDFrom retrieves the request ID from the request context.
func RequestIDFrom(r *http.Request) string {
	return RequestIDFromContext(r.Context())
}

// UserIDFrom retrieves the authenticated user ID from the request context,
// or 0 for anonymous requests.
func UserIDFrom(r *http.Request) int {
	if id := auth.IdentityFrom(r.Context()); id != nil {
		return id.UserID
	}
	return 0
}

// accessEntry lets inner middleware report facts to the access log, which
// only sees the outer request.
type accessEntry struct {
	userID int
}

func withAccessEntry(ctx context.Context, e *accessEntry) context.Context {
	return context.WithValue(ctx, accessKey, e)
}

func noteUser(ctx context.Context, userID int) {
	if e, ok := ctx.Value(accessKey).(*accessEntry); ok {
		e.userID = userID
	}
}
