package cli

import (
	"errors"
	"fmt"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0 // Run completed, even when individual records failed
	ExitFailure = 1 // Run aborted or could not start
	ExitUsage   = 2 // Invalid command line or setting value
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code int   // Exit code (use ExitFailure or ExitUsage)
	Err  error // Underlying error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}
