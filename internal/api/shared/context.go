package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// ContextKey is the key type for values this package places in a context.
type ContextKey string

// Context keys for various values
const (
	// OperatorContextKey is the context key for the authenticated
	// operator's subject (email).
	OperatorContextKey ContextKey = "operator"

	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// SetTraceID adds a freshly generated trace ID to the context. Used to
// correlate logs and error responses for one request.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// GetOperator retrieves the authenticated operator subject from the
// context. Returns false if the request was not authenticated.
func GetOperator(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(OperatorContextKey).(string)
	return subject, ok && subject != ""
}

// generateTraceID creates a random 32-character hex trace ID. If
// crypto/rand fails it falls back to a timestamp-based ID rather than a
// static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
