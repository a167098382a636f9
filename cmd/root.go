// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/naka-gawa/lint-gate/internal/config"
	"github.com/naka-gawa/lint-gate/internal/domain"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lint-gate",
	Short: "Runs a lint tool in an isolated environment and gates on its result.",
	Long: `lint-gate changes into a project directory, activates its isolated
dependency environment (a Python virtualenv by default), runs a lint tool
(flake8 by default) and exits 0 when the tool passes or 1 when it fails.

Any non-zero tool exit status is reported as 1. A missing project directory
or environment exits 2 without running the tool.`,
	Args:          cobra.NoArgs,
	RunE:          runGate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var exitErr *domain.ExitError
	if !errors.As(err, &exitErr) || exitErr.Err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(domain.ExitCodeForError(err))
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to configuration file (default: ./lintgate.yaml if present)")
	config.RegisterFlags(rootCmd.Flags())
}
