package preflight

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"borgtool/internal/logging"
	"borgtool/internal/repo"
	"borgtool/internal/services/borg"
)

// Result reports the outcome of a single doctor check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

const defaultProbeTimeout = 5 * time.Second

var authMarkers = []string{"permission denied", "publickey", "password"}

// Option configures a Prober.
type Option func(*Prober)

// WithExecutor injects a custom executor for the ssh probe (primarily for tests).
func WithExecutor(exec borg.Executor) Option {
	return func(p *Prober) {
		if exec != nil {
			p.exec = exec
		}
	}
}

// WithTimeout overrides the per-host probe timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithLogger sets the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Prober) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Prober classifies repository reachability without mutating anything.
type Prober struct {
	exec    borg.Executor
	timeout time.Duration
	logger  *slog.Logger
	sshBin  string
}

// NewProber constructs a Prober using ssh for remote checks.
func NewProber(opts ...Option) *Prober {
	p := &Prober{exec: borg.DefaultExecutor(), timeout: defaultProbeTimeout, logger: logging.NewNop(), sshBin: "ssh"}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "probe")
	return p
}

// Probe returns the reachability of locator. Remote locators are only
// contacted when probeRemote is set; otherwise they stay Unknown.
func (p *Prober) Probe(ctx context.Context, locator string, probeRemote bool) repo.Status {
	if !IsRemote(locator) {
		if _, err := os.Stat(locator); err == nil {
			return repo.StatusReachable
		}
		return repo.StatusMissingLocal
	}
	if !probeRemote {
		return repo.StatusUnknown
	}
	host := ExtractHost(locator)
	if host == "" {
		return repo.StatusUnknown
	}

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	res, err := p.exec.Run(probeCtx, borg.Request{
		Binary: p.sshBin,
		Args: []string{
			"-o", "BatchMode=yes",
			"-o", "StrictHostKeyChecking=no",
			"-o", "UserKnownHostsFile=/dev/null",
			"-o", "ConnectTimeout=5",
			host, "true",
		},
	})
	if err != nil {
		p.logger.Debug("ssh probe did not complete", logging.String("host", host), logging.Error(err))
		return repo.StatusUnknown
	}
	if res.Status == 0 {
		return repo.StatusRemoteReachable
	}
	stderr := strings.ToLower(string(res.Stderr))
	for _, marker := range authMarkers {
		if strings.Contains(stderr, marker) {
			return repo.StatusRemoteAuthUnclear
		}
	}
	p.logger.Debug("ssh probe failed", logging.String("host", host), logging.Int(logging.FieldExitStatus, res.Status))
	return repo.StatusUnknown
}

// ProbeAll assigns a status to every context using at most workers
// concurrent probes. The returned slice keeps the input order.
func (p *Prober) ProbeAll(ctx context.Context, contexts []repo.Context, probeRemote bool, workers int) []repo.Context {
	out := make([]repo.Context, len(contexts))
	copy(out, contexts)
	if len(out) == 0 {
		return out
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(out) {
		workers = len(out)
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				out[i].Status = p.Probe(ctx, out[i].Locator, probeRemote)
			}
		}()
	}
	for i := range out {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
	return out
}
