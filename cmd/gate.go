package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/naka-gawa/lint-gate/internal/config"
	"github.com/naka-gawa/lint-gate/internal/domain"
	"github.com/naka-gawa/lint-gate/internal/gateway"
	"github.com/naka-gawa/lint-gate/internal/usecase"
	"github.com/spf13/cobra"
)

// newReporter builds the GitHub reporter used by publish.
var newReporter = gateway.NewGitHubReporter

// runGate loads configuration, runs the gate and reports its result.
// Exit codes travel back to Execute as *domain.ExitError.
func runGate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return &domain.ExitError{Code: domain.ExitConfigError, Err: err}
	}

	logger := log.New(io.Discard, "", log.LstdFlags) // Default: discard all logs.
	if cfg.Verbose {
		logger.SetOutput(os.Stderr) // If verbose, log to standard error.
	}

	// In JSON mode the tool's stdout would corrupt the report, so it goes to stderr.
	toolStdout := io.Writer(os.Stdout)
	if cfg.Format == "json" {
		toolStdout = os.Stderr
	}

	gate := usecase.NewGate(gateway.NewProcessRunner(logger), logger)
	report, err := gate.Run(ctx, usecase.GateOptions{
		ProjectRoot: cfg.ProjectRoot,
		EnvRoot:     cfg.EnvRoot(),
		Tool:        cfg.Tool,
		Args:        cfg.ToolArgs,
		Timeout:     cfg.Timeout,
		Stdout:      toolStdout,
		Stderr:      os.Stderr,
	})
	if err != nil {
		return err
	}

	if cfg.GitHub.Enabled() {
		publish(ctx, cfg, report, logger)
	}

	if err := writeReport(os.Stdout, cfg.Format, report); err != nil {
		return err
	}

	if report.Outcome == domain.Fail {
		return &domain.ExitError{Code: report.ExitCode}
	}
	return nil
}

// publish reports the result to GitHub. Failures are printed and never
// change the gate's exit code.
func publish(ctx context.Context, cfg *config.Config, report *domain.Report, logger *log.Logger) {
	reporter, err := newReporter(cfg.GitHub.Token, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create GitHub reporter: %v\n", err)
		return
	}
	target := usecase.PublishTarget{
		Owner:         cfg.GitHub.Owner(),
		Repo:          cfg.GitHub.Name(),
		SHA:           cfg.GitHub.SHA,
		PR:            cfg.GitHub.PR,
		StatusContext: cfg.GitHub.StatusContext,
		TargetURL:     actionsRunURL(),
	}
	if err := usecase.NewPublisher(reporter, logger).Publish(ctx, target, report); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to publish result to GitHub: %v\n", err)
	}
}

// actionsRunURL links the commit status to the current GitHub Actions run, if any.
func actionsRunURL() string {
	server, repo, runID := os.Getenv("GITHUB_SERVER_URL"), os.Getenv("GITHUB_REPOSITORY"), os.Getenv("GITHUB_RUN_ID")
	if server == "" || repo == "" || runID == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/actions/runs/%s", server, repo, runID)
}

func writeReport(w io.Writer, format string, report *domain.Report) error {
	if format == "json" {
		// Marshal the report into a pretty-printed JSON string.
		jsonData, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report to JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	if report.Outcome == domain.Pass {
		_, err := fmt.Fprintf(w, "lint-gate: PASS (%s)\n", report.Tool)
		return err
	}
	_, err := fmt.Fprintf(w, "lint-gate: FAIL (%s exited %d, %d findings in %d files)\n",
		report.Tool, report.ToolExitCode, report.Summary.TotalFindings, report.Summary.FilesAffected)
	return err
}
