// Package logging assembles structured slog loggers and formatting helpers used
// across borg-tool.
//
// It owns the configurable console/JSON handlers and routes output to the log
// file so interactive screens stay clean. Context helpers tag log lines with
// the session identifier and repository name. A no-op logger is provided for
// tests and wiring code that cannot fail.
package logging
