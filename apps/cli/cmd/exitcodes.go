package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Exit codes for the volt CLI
const (
	// ExitSuccess indicates all requests passed
	ExitSuccess = 0

	// ExitTestFailure indicates one or more requests or assertions failed
	ExitTestFailure = 1

	// ExitParseError indicates an invalid suite, response or assertion file
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for an error returned by a
// command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// errTestsFailed is returned when a run completes with failures that the
// formatter has already reported.
var errTestsFailed = withExitCode(ExitTestFailure, nil)

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitUsageError
}

func printError(w io.Writer, err error) {
	var ee *exitError
	if errors.As(err, &ee) && ee.err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
}
