package logging

import (
	"context"
	"log/slog"

	"borgtool/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID identifies one process run across log lines and journal rows.
	FieldSessionID = "session_id"
	// FieldRepository is the operator-facing repository name.
	FieldRepository = "repository"
	// FieldAction is the engine subcommand being run (list, create, mount...).
	FieldAction     = "action"
	FieldArchive    = "archive"
	FieldExitStatus = "exit_status"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	FieldErrorHint = "error_hint"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	if repo, ok := services.RepositoryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRepository, repo))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
