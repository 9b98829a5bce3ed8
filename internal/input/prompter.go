package input

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
)

var (
	// ErrBack signals that the operator asked to leave the current screen.
	ErrBack = errors.New("back")
	// ErrAborted signals that input ended (EOF, closed stdin, cancelled context).
	ErrAborted = errors.New("input aborted")
)

// Kind classifies a notification.
type Kind int

const (
	Info Kind = iota
	Warning
	Failure
)

// Menu describes one selection screen.
type Menu struct {
	Title   string
	Header  string
	Options []string
	Default int
}

// Prompter is the operator-facing surface the navigator drives. Select
// returns the chosen index or ErrBack. Input and Password return ErrBack when the
// operator cancels the field.
type Prompter interface {
	Select(ctx context.Context, menu Menu) (int, error)
	Confirm(ctx context.Context, question string, def bool) (bool, error)
	Input(ctx context.Context, prompt, def string) (string, error)
	Password(ctx context.Context, prompt string) (string, error)
	Notify(ctx context.Context, kind Kind, message string) error
}

// IsAborted reports whether err ends the interactive session.
func IsAborted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled)
}

// MapInputError normalizes closed or exhausted stdin into ErrAborted.
func MapInputError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return ErrAborted
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "use of closed file") || strings.Contains(msg, "bad file descriptor") {
		return ErrAborted
	}
	return err
}
