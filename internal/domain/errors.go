package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectRootMissing is returned when the project root does not exist or is not a directory.
	ErrProjectRootMissing = errors.New("project root not found")
	// ErrEnvironmentMissing is returned when the isolated environment cannot be activated.
	ErrEnvironmentMissing = errors.New("isolated environment not found")
)

// ConfigurationError reports a problem with the gate's setup that prevents
// the lint tool from being invoked at all.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v: %s", e.Err, e.Path)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ExitError carries a process exit code from a command back to main.
// Err may be nil when the exit code alone is the message, as with a failed lint run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeForError maps an error returned by the gate to a process exit code.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitPass
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return ExitConfigError
	}
	return ExitInternalError
}
