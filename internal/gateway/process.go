package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"

	"github.com/naka-gawa/lint-gate/internal/domain"
)

// exitCodeCannotExecute is the shell's status for a command found but not runnable.
const exitCodeCannotExecute = 126

// Invocation describes one run of the lint tool.
type Invocation struct {
	Tool string
	Args []string
	Dir  string
	Env  *Environment
	// Stdout and Stderr receive the tool's output as it is produced. Both may be nil.
	Stdout io.Writer
	Stderr io.Writer
}

// RunResult holds the captured result of a tool run.
type RunResult struct {
	ExitCode  int
	Stdout    []byte
	Stderr    []byte
	Duration  time.Duration
	NotFound  bool
	Cancelled bool
}

// ToolRunner defines the behavior of a gateway that executes the lint tool.
type ToolRunner interface {
	Run(ctx context.Context, inv Invocation) (*RunResult, error)
}

// ProcessRunner runs the lint tool as a child process.
type ProcessRunner struct {
	logger *log.Logger
}

// NewProcessRunner creates a new ProcessRunner.
func NewProcessRunner(logger *log.Logger) *ProcessRunner {
	return &ProcessRunner{logger: logger}
}

// Run executes the tool and records its exit status. A non-zero exit is a
// result, not an error; the returned error is reserved for invalid input.
func (p *ProcessRunner) Run(ctx context.Context, inv Invocation) (*RunResult, error) {
	if inv.Env == nil {
		return nil, fmt.Errorf("invocation has no environment")
	}
	stdout, stderr := writerOrDiscard(inv.Stdout), writerOrDiscard(inv.Stderr)

	path, err := inv.Env.LookPath(inv.Tool, inv.Dir)
	if err != nil {
		p.logger.Printf("  Tool %q not found in activated PATH", inv.Tool)
		msg := fmt.Sprintf("lint-gate: %s: command not found\n", inv.Tool)
		_, _ = io.WriteString(stderr, msg)
		return &RunResult{ExitCode: domain.ExitCodeNotFound, Stderr: []byte(msg), NotFound: true}, nil
	}
	p.logger.Printf("  Running %s %v in %s", path, inv.Args, inv.Dir)

	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Env = inv.Env.Vars
	cmd.Stdout = io.MultiWriter(stdout, &outBuf)
	cmd.Stderr = io.MultiWriter(stderr, &errBuf)
	cmd.WaitDelay = 5 * time.Second

	start := time.Now()
	runErr := cmd.Run()
	result := &RunResult{
		Stdout:    outBuf.Bytes(),
		Stderr:    errBuf.Bytes(),
		Duration:  time.Since(start),
		Cancelled: ctx.Err() != nil,
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		p.logger.Printf("  Tool could not be executed: %v", runErr)
		_, _ = fmt.Fprintf(stderr, "lint-gate: %s: %v\n", inv.Tool, runErr)
		result.ExitCode = exitCodeCannotExecute
	}
	if result.Cancelled && result.ExitCode == 0 {
		result.ExitCode = -1
	}
	p.logger.Printf("  Tool exited with status %d after %s", result.ExitCode, result.Duration.Round(time.Millisecond))
	return result, nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
