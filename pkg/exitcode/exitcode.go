/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/

// Package exitcode provides standardized exit codes for execmanifest
package exitcode

import "errors"

// Exit codes for the execmanifest CLI
const (
	Success         = 0
	GeneralError    = 1 // also used for usage errors
	ConfigError     = 2
	ValidationError = 3 // malformed manifest, or --check found pending changes
	FileSystemError = 4
	PermissionError = 6
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case PermissionError:
		return "Permission error"
	default:
		return "Unknown error"
	}
}

// ExitCoder is implemented by errors that know which exit code they map to.
type ExitCoder interface {
	ExitCode() int
}

// ForError returns the exit code for err. The outermost ExitCoder in the
// chain wins; errors without one map to GeneralError.
func ForError(err error) int {
	if err == nil {
		return Success
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return GeneralError
}

type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }
func (e *codedError) ExitCode() int { return e.code }

// WithCode attaches an exit code to err. A nil err stays nil.
func WithCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}
