package svn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"time"

	"svnbatch/internal/domain"
)

// DefaultBinary is the executable used when none is configured
const DefaultBinary = "svn"

// ErrPathNotFound is returned when a working copy path is not an existing directory
var ErrPathNotFound = errors.New("path not found")

// Runner runs one svn sub-command against one working copy.
// Implementations never return an error: every problem is folded into the Outcome.
type Runner interface {
	Run(ctx context.Context, op domain.Operation, path string) Outcome
}

// CommandRunner invokes the external svn executable
type CommandRunner struct {
	Binary  string
	Timeout time.Duration // zero means wait for the process indefinitely
}

// NewCommandRunner creates a runner for the given binary
func NewCommandRunner(binary string, timeout time.Duration) *CommandRunner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &CommandRunner{Binary: binary, Timeout: timeout}
}

// Run executes `<binary> <op> <path>` and blocks until it exits
func (r *CommandRunner) Run(ctx context.Context, op domain.Operation, path string) Outcome {
	startTime := time.Now()

	if !op.Valid() {
		return errored(fmt.Errorf("unsupported operation %q", op))
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	// Arguments are passed straight through, no shell is involved
	cmd := exec.CommandContext(ctx, r.Binary, string(op), path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var outcome Outcome
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		outcome = succeeded(stdout.String())
	case ctx.Err() != nil:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = errored(fmt.Errorf("svn %s timed out after %s", op, r.Timeout))
		} else {
			outcome = errored(fmt.Errorf("svn %s interrupted: %w", op, ctx.Err()))
		}
	case errors.As(err, &exitErr):
		outcome = failed(stderr.String(), exitErr.ExitCode())
	default:
		outcome = errored(err)
	}
	outcome.Duration = time.Since(startTime)

	log.Printf("svn %s %s: %s (%s)", op, path, outcome.Kind, outcome.Duration.Round(time.Millisecond))
	return outcome
}

// CheckWorkingCopy verifies that path exists and is a directory
func CheckWorkingCopy(path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return nil
}
