package services

import "context"

type contextKey string

const (
	sessionIDKey  contextKey = "session_id"
	repositoryKey contextKey = "repository"
)

// WithSessionID annotates context with the identifier of the current process run.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithRepository annotates context with the operator-facing repository name.
func WithRepository(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, repositoryKey, name)
}

// RepositoryFromContext returns the repository name if present.
func RepositoryFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(repositoryKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
