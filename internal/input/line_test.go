package input

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestPrompter(in string) (*LinePrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewLinePrompter(strings.NewReader(in), out), out
}

func TestSelectParsesChoices(t *testing.T) {
	p, out := newTestPrompter("2\n")
	idx, err := p.Select(context.Background(), Menu{Title: "Repos", Header: "Host: h", Options: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if idx != 1 {
		t.Fatalf("idx=%d; want 1", idx)
	}
	text := out.String()
	for _, want := range []string{"Repos", "Host: h", "1) a", "2) b", "0) back"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q: %q", want, text)
		}
	}
}

func TestSelectDefaultAndBack(t *testing.T) {
	p, _ := newTestPrompter("\n")
	idx, err := p.Select(context.Background(), Menu{Options: []string{"a", "b"}, Default: 1})
	if err != nil || idx != 1 {
		t.Fatalf("expected default 1, got %d %v", idx, err)
	}

	p, _ = newTestPrompter("b\n")
	if _, err := p.Select(context.Background(), Menu{Options: []string{"a"}}); !errors.Is(err, ErrBack) {
		t.Fatalf("expected ErrBack, got %v", err)
	}
}

func TestSelectRetriesInvalidInput(t *testing.T) {
	p, out := newTestPrompter("9\nx\n1\n")
	idx, err := p.Select(context.Background(), Menu{Options: []string{"a"}})
	if err != nil || idx != 0 {
		t.Fatalf("expected 0, got %d %v", idx, err)
	}
	if strings.Count(out.String(), "Invalid choice") != 2 {
		t.Fatalf("expected two invalid-choice warnings: %q", out.String())
	}
}

func TestSelectEOFAborts(t *testing.T) {
	p, _ := newTestPrompter("")
	_, err := p.Select(context.Background(), Menu{Options: []string{"a"}})
	if !IsAborted(err) {
		t.Fatalf("expected aborted, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	cases := []struct {
		in   string
		def  bool
		want bool
	}{
		{"y\n", false, true},
		{"no\n", true, false},
		{"\n", true, true},
		{"maybe\nn\n", true, false},
	}
	for _, tc := range cases {
		p, _ := newTestPrompter(tc.in)
		got, err := p.Confirm(context.Background(), "Proceed?", tc.def)
		if err != nil {
			t.Fatalf("Confirm(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Confirm(%q)=%v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestInputDefaultsAndBack(t *testing.T) {
	p, _ := newTestPrompter("\n")
	got, err := p.Input(context.Background(), "Destination", "/tmp/out")
	if err != nil || got != "/tmp/out" {
		t.Fatalf("expected default, got %q %v", got, err)
	}

	p, _ = newTestPrompter("  /srv/x  \n")
	got, _ = p.Input(context.Background(), "Destination", "")
	if got != "/srv/x" {
		t.Fatalf("expected trimmed value, got %q", got)
	}

	p, _ = newTestPrompter(BackToken + "\n")
	if _, err := p.Input(context.Background(), "Name", ""); !errors.Is(err, ErrBack) {
		t.Fatalf("expected ErrBack, got %v", err)
	}
}

func TestInputAcceptsFinalLineWithoutNewline(t *testing.T) {
	p, _ := newTestPrompter("last")
	got, err := p.Input(context.Background(), "Name", "")
	if err != nil || got != "last" {
		t.Fatalf("expected partial line, got %q %v", got, err)
	}
}

func TestPasswordFromPipeReadsLine(t *testing.T) {
	p, out := newTestPrompter("s3cret\n")
	got, err := p.Password(context.Background(), "Passphrase: ")
	if err != nil || got != "s3cret" {
		t.Fatalf("expected secret, got %q %v", got, err)
	}
	if !strings.Contains(out.String(), "Passphrase: ") {
		t.Fatalf("expected prompt in output")
	}
}

func TestReadPasswordWithContextUsesReader(t *testing.T) {
	got, err := ReadPasswordWithContext(context.Background(), func(fd int) ([]byte, error) {
		if fd != 7 {
			t.Fatalf("fd=%d", fd)
		}
		return []byte("pw"), nil
	}, 7)
	if err != nil || string(got) != "pw" {
		t.Fatalf("got %q %v", got, err)
	}

	_, err = ReadPasswordWithContext(context.Background(), func(int) ([]byte, error) { return nil, io.EOF }, 0)
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestReadLineWithContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr, pw := io.Pipe()
	defer pw.Close()
	_, err := ReadLineWithContext(ctx, newReader(pr))
	if !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}

func TestNotifyPrefixesKinds(t *testing.T) {
	p, out := newTestPrompter("")
	_ = p.Notify(context.Background(), Warning, "repo missing")
	_ = p.Notify(context.Background(), Failure, "borg failed")
	_ = p.Notify(context.Background(), Info, "done")
	text := out.String()
	for _, want := range []string{"Warning: repo missing", "Error: borg failed", "done"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in %q", want, text)
		}
	}
}

func TestMapInputError(t *testing.T) {
	if MapInputError(nil) != nil {
		t.Fatal("expected nil")
	}
	if !errors.Is(MapInputError(io.EOF), ErrAborted) {
		t.Fatal("expected EOF to abort")
	}
	if !errors.Is(MapInputError(errors.New("read: bad file descriptor")), ErrAborted) {
		t.Fatal("expected closed fd to abort")
	}
	other := errors.New("other")
	if MapInputError(other) != other {
		t.Fatal("expected passthrough")
	}
}

func newReader(r io.Reader) *bufio.Reader { return bufio.NewReader(r) }
