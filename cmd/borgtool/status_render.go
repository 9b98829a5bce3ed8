package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const statusLabelWidth = 24

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", statusText)
	if !colorize {
		return line
	}
	c := statusKindColor(kind)
	c.EnableColor()
	return c.Sprint(line)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) *color.Color {
	switch kind {
	case statusOK:
		return color.New(color.FgGreen)
	case statusWarn:
		return color.New(color.FgYellow)
	case statusError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgBlue)
	}
}

func renderSectionHeader(title string) string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	return line + "\n" + strings.Repeat("-", len(line))
}

// warn prints a yellow warning line; color is dropped when w is not a
// terminal.
func warn(w io.Writer, message string) {
	c := color.New(color.FgYellow)
	if !isTerminal(w) {
		c.DisableColor()
	}
	c.Fprintf(w, "Warning: %s\n", message)
}
