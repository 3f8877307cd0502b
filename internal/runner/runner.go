// Package runner invokes approved shell commands. It owns no security
// logic — it trusts the decision handed to it and reports what happened.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// DefaultTimeout bounds command execution when none is configured.
const DefaultTimeout = 30 * time.Second

// ExecResult captures a completed subprocess run. A non-zero exit code
// is a normal result, not an error.
type ExecResult struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// TimeoutError is returned when a command exceeds its execution window.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("command timed out after %s: %s", e.Timeout, e.Command)
}

// Runner executes commands through the shell with a bounded timeout.
type Runner struct {
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a Runner. timeout <= 0 uses DefaultTimeout.
func New(timeout time.Duration, logger *slog.Logger) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{timeout: timeout, logger: logger}
}

// Run executes the command via `sh -c` in the given working directory.
// dir may be empty to inherit the process working directory.
func (r *Runner) Run(ctx context.Context, command, dir string) (*ExecResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", command)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if runCtx.Err() == context.DeadlineExceeded {
		r.logger.Warn("command timed out", "command", command, "timeout", r.timeout)
		return nil, &TimeoutError{Command: command, Timeout: r.timeout}
	}

	result := &ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return nil, fmt.Errorf("runner: launch %q: %w", command, err)
	}

	return result, nil
}

// Timeout returns the configured execution window.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// ResolveWorkingDir picks where an approved command runs. With
// restriction inactive the default working directory is used unchanged.
// With restriction active the normalized allowed directory is used when
// it exists; a missing or invalid allowed directory falls back to the
// default. This resolves where to run, never whether to run — the
// command must already have passed path validation.
func ResolveWorkingDir(restricted bool, allowedDir, workingDir string) string {
	if !restricted {
		return workingDir
	}
	if allowedDir != "" {
		abs, err := filepath.Abs(allowedDir)
		if err == nil {
			if info, err := os.Stat(abs); err == nil && info.IsDir() {
				if resolved, err := filepath.EvalSymlinks(abs); err == nil {
					return resolved
				}
				return abs
			}
		}
	}
	return workingDir
}
