package borg

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"borgtool/internal/credentials"
	"borgtool/internal/journal"
	"borgtool/internal/logging"
	"borgtool/internal/repo"
	"borgtool/internal/services"
)

const maxItemLine = 16 * 1024 * 1024

// Recorder persists mutating operations.
type Recorder interface {
	Record(ctx context.Context, entry journal.Entry) error
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithRecorder journals create, extract, mount, umount and init invocations.
func WithRecorder(rec Recorder) Option {
	return func(c *Client) {
		c.recorder = rec
	}
}

// WithLogger sets the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Client wraps borg CLI interactions for one process run.
type Client struct {
	exec     Executor
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New constructs a borg client.
func New(opts ...Option) *Client {
	c := &Client{exec: commandExecutor{}, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "borg")
	return c
}

// Invocation is a single engine call.
type Invocation struct {
	Action     string
	Repository repo.Context
	Args       []string
	Passphrase credentials.Passphrase
	Dir        string
	// Target names the archive or mountpoint for the journal.
	Target string
	// Hint attaches the elevated-privileges hint to permission failures.
	Hint bool
	// Record journals the invocation.
	Record bool
}

// Run spawns the engine and returns its raw result. Only a failure to start
// the binary is an error.
func (c *Client) Run(ctx context.Context, inv Invocation) (Result, error) {
	res, _, _, err := c.run(ctx, inv)
	return res, err
}

// Invoke runs the engine and converts a non-zero exit into an OperationError.
func (c *Client) Invoke(ctx context.Context, inv Invocation) (Result, error) {
	res, started, elapsed, err := c.run(ctx, inv)
	if err != nil {
		return res, err
	}
	if res.Status != 0 {
		opErr := services.NewOperationError(inv.Action, res.Status, res.Stderr, inv.Hint)
		c.record(ctx, inv, started, elapsed, res.Status, opErr)
		return res, opErr
	}
	c.record(ctx, inv, started, elapsed, 0, nil)
	return res, nil
}

func (c *Client) run(ctx context.Context, inv Invocation) (Result, time.Time, time.Duration, error) {
	started := c.now()
	res, err := c.exec.Run(ctx, Request{
		Binary: inv.Repository.EnginePath,
		Args:   inv.Args,
		Env:    inv.Passphrase.Env(),
		Dir:    inv.Dir,
	})
	elapsed := c.now().Sub(started)

	logger := logging.WithContext(ctx, c.logger).With(
		logging.String(logging.FieldRepository, inv.Repository.Name),
		logging.String(logging.FieldAction, inv.Action),
	)
	if err != nil {
		logger.Error("borg invocation failed to start", logging.String("binary", inv.Repository.EnginePath), logging.Error(err))
		if ctx.Err() != nil {
			return res, started, elapsed, fmt.Errorf("borg %s: %w", inv.Action, err)
		}
		wrapped := services.Wrap(services.ErrEngineInvocation, "borg", inv.Action,
			fmt.Sprintf("Failed to invoke %s binary", inv.Repository.EnginePath), err)
		c.record(ctx, inv, started, elapsed, -1, wrapped)
		return res, started, elapsed, wrapped
	}
	logger.Debug("borg invocation finished",
		logging.Int(logging.FieldExitStatus, res.Status),
		logging.Duration("duration", elapsed),
	)
	return res, started, elapsed, nil
}

func (c *Client) record(ctx context.Context, inv Invocation, started time.Time, elapsed time.Duration, status int, cause error) {
	if !inv.Record || c.recorder == nil {
		return
	}
	entry := journal.Entry{
		Repository: inv.Repository.Name,
		Action:     inv.Action,
		Target:     inv.Target,
		ExitStatus: status,
		StartedAt:  started,
		Duration:   elapsed,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := c.recorder.Record(ctx, entry); err != nil {
		logging.WarnWithContext(c.logger, "journal write failed", "journal_write_failed",
			"check journal.path permissions", logging.Error(err))
	}
}

// ListArchives returns the archives in the repository in engine order.
func (c *Client) ListArchives(ctx context.Context, rc repo.Context, pass credentials.Passphrase) ([]Archive, error) {
	res, err := c.Invoke(ctx, Invocation{
		Action:     "list",
		Repository: rc,
		Args:       []string{"list", "--json", rc.Locator},
		Passphrase: pass,
	})
	if err != nil {
		return nil, err
	}
	var parsed listResponse
	if err := json.Unmarshal(res.Stdout, &parsed); err != nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "borg", "list", "Failed to parse borg JSON output", err)
	}
	return parsed.Archives, nil
}

// ListItems returns the entries of one archive.
func (c *Client) ListItems(ctx context.Context, rc repo.Context, archive string, pass credentials.Passphrase) ([]Item, error) {
	res, err := c.Invoke(ctx, Invocation{
		Action:     "list items",
		Repository: rc,
		Args:       []string{"list", "--json-lines", rc.ArchiveLocator(archive)},
		Passphrase: pass,
	})
	if err != nil {
		return nil, err
	}
	return parseItems(res.Stdout)
}

func parseItems(stdout []byte) ([]Item, error) {
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), maxItemLine)
	var items []Item
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var item Item
		if err := json.Unmarshal(line, &item); err != nil {
			return nil, services.Wrap(services.ErrMalformedOutput, "borg", "list items",
				fmt.Sprintf("Failed to parse JSON line %d from borg output", lineNo), err)
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrMalformedOutput, "borg", "list items", "read borg output", err)
	}
	return items, nil
}

// StripComponents is the --strip-components value that lands only the
// selected entry in the destination directory.
func StripComponents(pathInArchive string) int {
	cleaned := strings.Trim(path.Clean("/"+pathInArchive), "/")
	if cleaned == "" {
		return 0
	}
	return len(strings.Split(cleaned, "/")) - 1
}

// Extract restores one path from archive into destDir, creating it if needed.
func (c *Client) Extract(ctx context.Context, rc repo.Context, archive, pathInArchive, destDir string, pass credentials.Passphrase) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return services.Wrap(services.ErrOperationFailed, "borg", "extract", fmt.Sprintf("Create destination %s", destDir), err)
	}
	args := []string{"extract"}
	if strip := StripComponents(pathInArchive); strip > 0 {
		args = append(args, "--strip-components", strconv.Itoa(strip))
	}
	args = append(args, rc.ArchiveLocator(archive), pathInArchive)
	_, err := c.Invoke(ctx, Invocation{
		Action:     "extract",
		Repository: rc,
		Args:       args,
		Passphrase: pass,
		Dir:        destDir,
		Target:     archive + ":" + pathInArchive,
		Hint:       true,
		Record:     true,
	})
	return err
}

// Create runs `borg create` with fully assembled arguments (options, the
// archive locator, then include paths).
func (c *Client) Create(ctx context.Context, rc repo.Context, archive string, args []string, pass credentials.Passphrase) error {
	_, err := c.Invoke(ctx, Invocation{
		Action:     "create",
		Repository: rc,
		Args:       append([]string{"create"}, args...),
		Passphrase: pass,
		Target:     archive,
		Hint:       true,
		Record:     true,
	})
	return err
}

// Mount exposes archive at mountpoint through FUSE.
func (c *Client) Mount(ctx context.Context, rc repo.Context, archive, mountpoint string, pass credentials.Passphrase) error {
	_, err := c.Invoke(ctx, Invocation{
		Action:     "mount",
		Repository: rc,
		Args:       []string{"mount", rc.ArchiveLocator(archive), mountpoint},
		Passphrase: pass,
		Target:     archive + " @ " + mountpoint,
		Hint:       true,
		Record:     true,
	})
	return err
}

// Umount releases a FUSE mount created by Mount.
func (c *Client) Umount(ctx context.Context, rc repo.Context, mountpoint string, pass credentials.Passphrase) error {
	_, err := c.Invoke(ctx, Invocation{
		Action:     "umount",
		Repository: rc,
		Args:       []string{"umount", mountpoint},
		Passphrase: pass,
		Target:     mountpoint,
		Hint:       true,
		Record:     true,
	})
	return err
}

// MountSupported probes `borg mount --help`. Only an explicit "no fuse
// support" diagnostic counts as unsupported.
func (c *Client) MountSupported(ctx context.Context, rc repo.Context) (bool, error) {
	res, err := c.Run(ctx, Invocation{Action: "mount --help", Repository: rc, Args: []string{"mount", "--help"}})
	if err != nil {
		return false, err
	}
	combined := strings.ToLower(string(res.Stdout) + "\n" + string(res.Stderr))
	return !strings.Contains(combined, "no fuse support"), nil
}

// Init creates the repository with the given encryption mode.
func (c *Client) Init(ctx context.Context, rc repo.Context, encryption string, pass credentials.Passphrase) error {
	if strings.TrimSpace(encryption) == "" {
		encryption = "repokey"
	}
	_, err := c.Invoke(ctx, Invocation{
		Action:     "init",
		Repository: rc,
		Args:       []string{"init", "--encryption", encryption, rc.Locator},
		Passphrase: pass,
		Target:     rc.Locator,
		Hint:       true,
		Record:     true,
	})
	return err
}
