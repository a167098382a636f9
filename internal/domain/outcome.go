// Package domain contains the core data structures and domain logic for the application.
package domain

// Outcome is the two-valued result of a gate run.
type Outcome string

const (
	Pass Outcome = "pass"
	Fail Outcome = "fail"
)

// Process exit codes of the lint-gate binary.
const (
	ExitPass          = 0
	ExitLintFailed    = 1
	ExitConfigError   = 2
	ExitInternalError = 4
)

// ExitCodeNotFound is recorded as the tool's exit status when the tool
// binary cannot be located, following the shell convention.
const ExitCodeNotFound = 127

// OutcomeFromExitCode maps a raw tool exit status to an Outcome.
// Only zero passes; every other value, including negative codes for
// signalled or cancelled processes, fails.
func OutcomeFromExitCode(code int) Outcome {
	if code == 0 {
		return Pass
	}
	return Fail
}

// ExitCode returns the normalized process exit code for the outcome.
// A failing outcome always yields ExitLintFailed, never the tool's own code.
func (o Outcome) ExitCode() int {
	if o == Pass {
		return ExitPass
	}
	return ExitLintFailed
}
