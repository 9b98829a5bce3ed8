package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"borgtool/internal/config"
	"borgtool/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	borgLog    string
}

// setupCLITestEnv writes a config pointing at a fake engine. The environment
// carries an empty passphrase so nothing prompts for one.
func setupCLITestEnv(t *testing.T, fb testsupport.FakeBorg, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	t.Setenv("BORG_PASSPHRASE", "")
	t.Setenv("HOME", t.TempDir())

	bin, logPath := testsupport.WriteFakeBorg(t, fb)
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithBorgBin(bin)}, opts...)...)
	return &cliTestEnv{
		cfg:        cfg,
		configPath: testsupport.WriteConfig(t, cfg),
		baseDir:    testsupport.BaseDir(cfg),
		borgLog:    logPath,
	}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--plain"}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func invoked(t *testing.T, env *cliTestEnv, prefix string) []string {
	t.Helper()
	var matches []string
	for _, line := range testsupport.Invocations(t, env.borgLog) {
		if strings.HasPrefix(line, prefix) {
			matches = append(matches, line)
		}
	}
	return matches
}
