package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutcomeFromExitCode(t *testing.T) {
	testCases := []struct {
		name             string
		toolExitCode     int
		expectedOutcome  Outcome
		expectedExitCode int
	}{
		{name: "no findings", toolExitCode: 0, expectedOutcome: Pass, expectedExitCode: 0},
		{name: "findings reported", toolExitCode: 1, expectedOutcome: Fail, expectedExitCode: 1},
		{name: "tool crashed", toolExitCode: 2, expectedOutcome: Fail, expectedExitCode: 1},
		{name: "tool not found", toolExitCode: ExitCodeNotFound, expectedOutcome: Fail, expectedExitCode: 1},
		{name: "high exit code", toolExitCode: 255, expectedOutcome: Fail, expectedExitCode: 1},
		{name: "killed by signal", toolExitCode: -1, expectedOutcome: Fail, expectedExitCode: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := OutcomeFromExitCode(tc.toolExitCode)
			assert.Equal(t, tc.expectedOutcome, outcome)
			assert.Equal(t, tc.expectedExitCode, outcome.ExitCode())
		})
	}
}

func TestExitCodeForError(t *testing.T) {
	cfgErr := &ConfigurationError{Path: "/nowhere", Err: ErrProjectRootMissing}

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: ExitPass},
		{name: "lint failure", err: &ExitError{Code: ExitLintFailed}, expected: ExitLintFailed},
		{name: "configuration error", err: cfgErr, expected: ExitConfigError},
		{name: "wrapped configuration error", err: fmt.Errorf("running gate: %w", cfgErr), expected: ExitConfigError},
		{name: "unknown error", err: errors.New("boom"), expected: ExitInternalError},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ExitCodeForError(tc.err))
		})
	}
}

func TestConfigurationError_Unwrap(t *testing.T) {
	err := &ConfigurationError{Path: "/srv/app/venv", Err: ErrEnvironmentMissing}

	assert.ErrorIs(t, err, ErrEnvironmentMissing)
	assert.Contains(t, err.Error(), "/srv/app/venv")
}
