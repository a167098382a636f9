package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/naka-gawa/lint-gate/internal/domain"
	"github.com/naka-gawa/lint-gate/internal/gateway"
)

// GateOptions describes a single gate run.
type GateOptions struct {
	ProjectRoot string
	// EnvRoot is the isolated environment; relative paths are resolved
	// against ProjectRoot and an empty value disables activation.
	EnvRoot string
	Tool    string
	Args    []string
	// Timeout bounds the tool run. Zero means no limit.
	Timeout time.Duration
	// Stdout and Stderr receive the tool's output as it runs.
	Stdout io.Writer
	Stderr io.Writer
}

// Gate is the use case for running the lint tool and reducing its exit
// status to a pass/fail outcome.
type Gate struct {
	runner  gateway.ToolRunner
	logger  *log.Logger
	environ func() []string
}

// NewGate creates a new Gate instance.
func NewGate(runner gateway.ToolRunner, logger *log.Logger) *Gate {
	return &Gate{
		runner:  runner,
		logger:  logger,
		environ: os.Environ,
	}
}

// Run validates the project root, activates the isolated environment, runs
// the tool and records the outcome. Steps run strictly in order and a setup
// failure stops the run before the tool is invoked.
//
// A failing lint run is reported through Report.Outcome, not as an error.
// Errors are *domain.ConfigurationError for a missing project root or
// environment, or an internal error from the runner.
func (g *Gate) Run(ctx context.Context, opts GateOptions) (*domain.Report, error) {
	g.logger.Println("Usecase: Starting lint gate...")

	g.logger.Println("[1/3] Validating project root...")
	root, err := resolveProjectRoot(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}

	g.logger.Println("[2/3] Activating isolated environment...")
	envRoot := opts.EnvRoot
	if envRoot != "" && !filepath.IsAbs(envRoot) {
		envRoot = filepath.Join(root, envRoot)
	}
	env, err := gateway.Activate(envRoot, g.environ())
	if err != nil {
		return nil, err
	}
	if env.Root == "" {
		g.logger.Println("  Activation disabled, using the inherited environment.")
	} else {
		g.logger.Printf("  Activated %s", env.Root)
	}

	g.logger.Printf("[3/3] Running %s...", opts.Tool)
	runCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	result, err := g.runner.Run(runCtx, gateway.Invocation{
		Tool:   opts.Tool,
		Args:   opts.Args,
		Dir:    root,
		Env:    env,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", opts.Tool, err)
	}
	if result.Cancelled {
		g.logger.Printf("  %s was cancelled: %v", opts.Tool, runCtx.Err())
	}

	findings := ParseFindings(result.Stdout)
	outcome := domain.OutcomeFromExitCode(result.ExitCode)
	report := &domain.Report{
		Tool:            opts.Tool,
		ProjectRoot:     root,
		EnvRoot:         env.Root,
		ToolExitCode:    result.ExitCode,
		Outcome:         outcome,
		ExitCode:        outcome.ExitCode(),
		Duration:        result.Duration,
		DurationSeconds: result.Duration.Seconds(),
		Findings:        findings,
		Summary:         Summarize(findings),
	}

	g.logger.Printf("Usecase: Lint gate complete (%s, tool exit %d).", outcome, result.ExitCode)
	return report, nil
}

// resolveProjectRoot returns the absolute project root, failing with a
// ConfigurationError when it is missing or not a directory.
func resolveProjectRoot(projectRoot string) (string, error) {
	if projectRoot == "" {
		return "", &domain.ConfigurationError{Path: projectRoot, Err: domain.ErrProjectRootMissing}
	}
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return "", &domain.ConfigurationError{Path: root, Err: domain.ErrProjectRootMissing}
	}
	return root, nil
}
