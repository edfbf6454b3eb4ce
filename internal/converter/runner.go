package converter

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// ExecResult holds the outcome of a single subprocess invocation.
type ExecResult struct {
	Stdout string
	Stderr string
	Err    error
}

// Runner abstracts subprocess execution so the fallback engine is testable
// without a real ffmpeg binary.
type Runner interface {
	Run(ctx context.Context, bin string, args []string, timeout time.Duration) ExecResult
}

// ExecRunner runs real subprocesses. The per-attempt timeout kills the
// process immediately when it elapses; under deadline pressure there is no
// graceful-shutdown grace period.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, bin string, args []string, timeout time.Duration) ExecResult {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
		Err:    err,
	}
}
