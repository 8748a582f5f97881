package middleware

import "context"

type contextKey string

const (
	traceContextKey contextKey = "trace_id"
	actorContextKey contextKey = "actor"
	roleContextKey  contextKey = "role"
)

// TraceIDFromContext returns the request trace id, if any.
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceContextKey).(string); ok {
		return v
	}
	return ""
}

// ActorFromContext returns the authenticated subject, if any.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorContextKey).(string); ok {
		return v
	}
	return ""
}

// RoleFromContext returns the authenticated role, if any.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(roleContextKey).(string); ok {
		return v
	}
	return ""
}
