package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// ErrNotRegularFile is returned when a manifest path names a directory or device.
var ErrNotRegularFile = errors.New("not a regular file")

// ReadFile reads the whole file at path in a single open/read/close cycle.
// Paths that exist but are not regular files are rejected before opening.
func ReadFile(path string) ([]byte, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !st.Mode().IsRegular() {
		return nil, &fs.PathError{Op: "read", Path: path, Err: ErrNotRegularFile}
	}
	// #nosec G304 -- path is the operator-supplied manifest; reading it is the point
	return os.ReadFile(path)
}

// WriteFilePreservePerms truncates and rewrites path in place, preserving the
// existing file mode when possible. When the file does not exist, it uses a
// sane default of 0644. There is no temp file or rename: a failure mid-write
// can leave the file partially written.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		if !st.Mode().IsRegular() {
			return &fs.PathError{Op: "write", Path: path, Err: ErrNotRegularFile}
		}
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("truncate-and-write: %w", err)
	}
	return nil
}
