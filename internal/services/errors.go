package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration      = errors.New("configuration error")
	ErrSelectionAbandoned = errors.New("selection abandoned")
	ErrEngineInvocation   = errors.New("engine invocation failed")
	ErrOperationFailed    = errors.New("operation failed")
	ErrMalformedOutput    = errors.New("malformed engine output")
	ErrMountState         = errors.New("mount state error")
)

const permissionHint = "hint: run with sudo for system paths"

// OperationError reports a non-zero exit from a specific engine action.
type OperationError struct {
	Action string
	Status int
	Stderr string
	Hint   string
}

func (e *OperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "borg %s failed with status %d", e.Action, e.Status)
	if e.Stderr != "" {
		b.WriteString(": ")
		b.WriteString(e.Stderr)
	}
	if e.Hint != "" {
		b.WriteString(" (")
		b.WriteString(e.Hint)
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap lets errors.Is match ErrOperationFailed.
func (e *OperationError) Unwrap() error {
	return ErrOperationFailed
}

// NewOperationError builds an OperationError from raw engine stderr. The
// permission hint is attached when withHint is set and stderr asks for it.
func NewOperationError(action string, status int, stderr []byte, withHint bool) *OperationError {
	trimmed := strings.TrimSpace(string(stderr))
	opErr := &OperationError{Action: action, Status: status, Stderr: trimmed}
	if withHint {
		opErr.Hint = PermissionHint(trimmed)
	}
	return opErr
}

// PermissionHint returns the elevated-privileges hint when stderr mentions a
// permission failure, or an empty string otherwise.
func PermissionHint(stderr string) string {
	if strings.Contains(strings.ToLower(stderr), "permission denied") {
		return permissionHint
	}
	return ""
}

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrOperationFailed
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether the interactive loop may display err inline and
// return to the nearest menu instead of aborting the run.
func Recoverable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrMalformedOutput), errors.Is(err, ErrEngineInvocation), errors.Is(err, ErrConfiguration):
		return false
	case errors.Is(err, ErrOperationFailed), errors.Is(err, ErrMountState):
		return true
	default:
		return false
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "borg-tool failure"
	}
	return strings.Join(parts, ": ")
}
