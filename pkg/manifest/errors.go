package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/fulmenhq/execmanifest/pkg/exitcode"
)

// UsageError reports a bad invocation: wrong argument count or an unknown flag.
// Nothing has been read or written when it is returned.
type UsageError struct {
	Args int
	Err  error
}

func (e *UsageError) Error() string {
	if e.Err != nil {
		return "usage: " + e.Err.Error()
	}
	return fmt.Sprintf("usage: expected exactly 1 argument, got %d", e.Args)
}

func (e *UsageError) Unwrap() error { return e.Err }
func (e *UsageError) ExitCode() int { return exitcode.GeneralError }

// IOError reports a failure to read or write the manifest file.
type IOError struct {
	Op   string // "read" or "write"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) ExitCode() int {
	if errors.Is(e.Err, fs.ErrPermission) {
		return exitcode.PermissionError
	}
	return exitcode.FileSystemError
}

// ParseError reports that the manifest is not valid JSON. It is always
// returned before anything is written.
type ParseError struct {
	Path   string
	Offset int64 // byte offset of the syntax error, -1 when unknown
	Err    error
}

func newParseError(path string, err error) *ParseError {
	pe := &ParseError{Path: path, Offset: -1, Err: err}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		pe.Offset = syn.Offset
	}
	return pe
}

func (e *ParseError) Error() string {
	where := e.Path
	if where == "" {
		where = "manifest"
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("parse %s: invalid JSON at offset %d: %v", where, e.Offset, e.Err)
	}
	return fmt.Sprintf("parse %s: invalid JSON: %v", where, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
func (e *ParseError) ExitCode() int { return exitcode.ValidationError }
