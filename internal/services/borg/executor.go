package borg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Request describes one subprocess invocation.
type Request struct {
	Binary string
	Args   []string
	// Env entries are appended to the inherited environment.
	Env []string
	Dir string
}

// Result captures a finished process. A non-zero Status is not an error at
// this layer.
type Result struct {
	Status int
	Stdout []byte
	Stderr []byte
}

// Executor abstracts command execution for testability. Run returns an error
// only when the process could not be started or was cancelled.
type Executor interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// DefaultExecutor runs real processes via os/exec.
func DefaultExecutor() Executor { return commandExecutor{} }

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, req Request) (Result, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, req.Binary, req.Args...) //nolint:gosec
	if len(req.Env) > 0 {
		cmd.Env = append(os.Environ(), req.Env...)
	}
	cmd.Dir = req.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.Status = exitErr.ExitCode()
		return res, nil
	}
	return res, fmt.Errorf("start %s: %w", req.Binary, err)
}
