package manifest

import (
	"github.com/fulmenhq/execmanifest/pkg/logger"
	"github.com/fulmenhq/execmanifest/pkg/safeio"
)

// RewriteFile reads the manifest at path, rewrites it and, unless
// opts.DryRun is set, truncates and rewrites the same file with the result.
//
// The file is read completely before anything is written, so a *ParseError
// or a read *IOError leaves it untouched. A write *IOError can leave it
// partially written.
func RewriteFile(path string, opts Options) (*Result, error) {
	data, err := safeio.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	logger.Debug("Read manifest", logger.Path(path), logger.Int("bytes", len(data)))

	res, err := rewrite(path, data, opts)
	if err != nil {
		return nil, err
	}

	if opts.DryRun {
		logger.Debug("Dry run; manifest not written", logger.Path(path))
		return res, nil
	}

	if err := safeio.WriteFilePreservePerms(path, res.Output); err != nil {
		return res, &IOError{Op: "write", Path: path, Err: err}
	}
	res.Written = true
	return res, nil
}
