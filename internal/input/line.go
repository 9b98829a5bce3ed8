package input

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// BackToken cancels a free-text Input in line mode.
const BackToken = "<"

var readPassword = term.ReadPassword

// LinePrompter implements Prompter over plain line-oriented streams. It is
// used when stdin is not a terminal and as the fallback for dumb terminals.
type LinePrompter struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
	tty    bool
	warn   *color.Color
	fail   *color.Color
	title  *color.Color
}

// NewLinePrompter reads answers from in and writes prompts to out. When in is
// a terminal, passphrases are read without echo.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	p := &LinePrompter{
		reader: bufio.NewReader(in),
		out:    out,
		fd:     -1,
		warn:   color.New(color.FgYellow),
		fail:   color.New(color.FgRed, color.Bold),
		title:  color.New(color.Bold),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

func (p *LinePrompter) Select(ctx context.Context, menu Menu) (int, error) {
	if len(menu.Options) == 0 {
		return 0, ErrBack
	}
	def := menu.Default
	if def < 0 || def >= len(menu.Options) {
		def = 0
	}
	for {
		if menu.Title != "" {
			p.title.Fprintf(p.out, "\n== %s ==\n", menu.Title)
		}
		if menu.Header != "" {
			fmt.Fprintln(p.out, menu.Header)
		}
		for i, opt := range menu.Options {
			fmt.Fprintf(p.out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprintln(p.out, "  0) back")
		fmt.Fprintf(p.out, "Choose [%d]: ", def+1)

		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "0", "b", "back", "q":
			return 0, ErrBack
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(menu.Options) {
			return n - 1, nil
		}
		p.warn.Fprintf(p.out, "Invalid choice %q\n", line)
	}
}

func (p *LinePrompter) Confirm(ctx context.Context, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, hint)
		line, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.warn.Fprintln(p.out, "Please answer y or n")
	}
}

func (p *LinePrompter) Input(ctx context.Context, prompt, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", prompt, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", prompt)
	}
	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if line == BackToken {
		return "", ErrBack
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// Password reads a secret. On a terminal the input is not echoed; an
// interrupted read maps to ErrAborted.
func (p *LinePrompter) Password(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	if !p.tty {
		return p.readLine(ctx)
	}
	secret, err := ReadPasswordWithContext(ctx, readPassword, p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

func (p *LinePrompter) Notify(ctx context.Context, kind Kind, message string) error {
	switch kind {
	case Warning:
		p.warn.Fprintf(p.out, "Warning: %s\n", message)
	case Failure:
		p.fail.Fprintf(p.out, "Error: %s\n", message)
	default:
		fmt.Fprintln(p.out, message)
	}
	return ctx.Err()
}

func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	line, err := ReadLineWithContext(ctx, p.reader)
	if err != nil {
		if errors.Is(err, ErrAborted) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadLineWithContext reads one line and honours cancellation. Closed or
// exhausted input returns ErrAborted alongside any partial line.
func ReadLineWithContext(ctx context.Context, reader *bufio.Reader) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := reader.ReadString('\n')
		ch <- result{line: line, err: MapInputError(err)}
	}()
	select {
	case <-ctx.Done():
		return "", ErrAborted
	case res := <-ch:
		return res.line, res.err
	}
}

// ReadPasswordWithContext runs read on fd and honours cancellation.
func ReadPasswordWithContext(ctx context.Context, read func(int) ([]byte, error), fd int) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if read == nil {
		return nil, errors.New("password reader is nil")
	}
	type result struct {
		b   []byte
		err error
	}
	ch := make(chan result, 1)
	go func() {
		b, err := read(fd)
		ch <- result{b: b, err: MapInputError(err)}
	}()
	select {
	case <-ctx.Done():
		return nil, ErrAborted
	case res := <-ch:
		return res.b, res.err
	}
}
