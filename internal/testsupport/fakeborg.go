package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Failure makes the fake engine exit non-zero for one subcommand.
type Failure struct {
	Status int
	Stderr string
}

// FakeBorg describes the canned behaviour of a shell-script engine.
type FakeBorg struct {
	Archives []string
	Items    []string
	NoFuse   bool
	Fail     map[string]Failure
}

// WriteFakeBorg writes an executable that answers like borg for list, mount
// --help and the mutating subcommands, appending each argv to a log file.
// It returns the binary path and the log path.
func WriteFakeBorg(t testing.TB, fb FakeBorg) (string, string) {
	t.Helper()
	dir := t.TempDir()
	bin := filepath.Join(dir, "borg")
	logPath := filepath.Join(dir, "invocations.log")

	type archive struct {
		Name string `json:"archive"`
		Time string `json:"time"`
	}
	listing := struct {
		Archives []archive `json:"archives"`
	}{Archives: []archive{}}
	for _, name := range fb.Archives {
		listing.Archives = append(listing.Archives, archive{Name: name, Time: "2024-03-01T12:00:00.000000"})
	}
	archivesJSON, err := json.Marshal(listing)
	if err != nil {
		t.Fatalf("marshal archives: %v", err)
	}
	var items strings.Builder
	for _, path := range fb.Items {
		line, err := json.Marshal(map[string]any{"path": path, "type": "-", "size": 6})
		if err != nil {
			t.Fatalf("marshal item: %v", err)
		}
		items.Write(line)
		items.WriteByte('\n')
	}

	var script strings.Builder
	script.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&script, "printf '%%s\\n' \"$*\" >> '%s'\n", logPath)
	script.WriteString("case \"$1\" in\n")
	for action, failure := range fb.Fail {
		fmt.Fprintf(&script, "%s) printf '%%s\\n' '%s' >&2; exit %d ;;\n", action, failure.Stderr, failure.Status)
	}
	script.WriteString("list)\n")
	fmt.Fprintf(&script, "  if [ \"$2\" = \"--json\" ]; then printf '%%s\\n' '%s'; exit 0; fi\n", archivesJSON)
	fmt.Fprintf(&script, "  printf '%%s' '%s'; exit 0 ;;\n", items.String())
	script.WriteString("mount)\n")
	if fb.NoFuse {
		script.WriteString("  if [ \"$2\" = \"--help\" ]; then echo 'borg mount not available: no FUSE support, BORG_FUSE_IMPL=pyfuse3,llfuse.' >&2; exit 2; fi\n")
	} else {
		script.WriteString("  if [ \"$2\" = \"--help\" ]; then echo 'usage: borg mount'; exit 0; fi\n")
	}
	script.WriteString("  exit 0 ;;\n")
	script.WriteString("*) exit 0 ;;\nesac\n")

	if err := os.WriteFile(bin, []byte(script.String()), 0o755); err != nil {
		t.Fatalf("write fake borg: %v", err)
	}
	return bin, logPath
}

// Invocations returns the argv lines logged by a fake engine.
func Invocations(t testing.TB, logPath string) []string {
	t.Helper()
	data, err := os.ReadFile(logPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read invocations: %v", err)
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
