// Package manifest rewrites execution manifests so that the launched
// processes neither report execution state nor wait on execution dependencies.
//
// The document is never decoded into Go values. Replacement values are
// spliced into the original bytes at the offsets of the recognized keys, so
// key order, number literals and string escapes of everything else survive
// unchanged; only whitespace is normalized by the final re-indent.
//
// A recognized key that occurs more than once in the same object is collapsed
// to its first position, holding the value a last-wins decoder would see.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/fulmenhq/execmanifest/pkg/config"
	"github.com/fulmenhq/execmanifest/pkg/format"
	"github.com/fulmenhq/execmanifest/pkg/logger"
)

// Recognized manifest keys. Everything else is opaque.
const (
	KeyReportingBehavior   = "reportingBehavior"
	KeyProcesses           = "processes"
	KeyStartupConfigs      = "startupConfigs"
	KeyExecutionDependency = "executionDependency"
)

var emptyObject = []byte("{}")

// Options controls the rewrite and the serialization of its result.
type Options struct {
	// ReportingBehavior replaces any existing top-level reportingBehavior.
	// Empty means config.DefaultReportingBehavior.
	ReportingBehavior string
	// Indent is the number of spaces per nesting level; 0 breaks lines without indenting.
	Indent          int
	EnsureASCII     bool
	TrailingNewline bool
	// SizeWarningMB logs a warning for larger inputs; 0 disables it.
	SizeWarningMB int
	// DryRun makes RewriteFile skip the write.
	DryRun bool
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return OptionsFromConfig(config.Default())
}

// OptionsFromConfig maps loaded configuration onto rewrite options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ReportingBehavior: cfg.Rewrite.ReportingBehavior,
		Indent:            cfg.Output.Indent,
		EnsureASCII:       cfg.Output.EnsureASCII,
		TrailingNewline:   cfg.Output.TrailingNewline,
		SizeWarningMB:     cfg.Input.SizeWarningMB,
	}
}

// Result describes one rewrite.
type Result struct {
	Path   string
	Output []byte

	ReportingBehaviorReset bool
	DependenciesCleared    int

	// Changed reports whether Output differs from the input bytes.
	Changed bool
	// Written reports whether RewriteFile wrote Output back to Path.
	Written bool
}

// Rewrite applies the manifest transformation to an in-memory document:
//
//   - a top-level "reportingBehavior" is set to opts.ReportingBehavior,
//     whatever its previous type;
//   - every processes[i].startupConfigs[j].executionDependency is set to {}.
//
// Keys are never added or removed. Non-object documents, and "processes" or
// "startupConfigs" values that are not arrays, pass through unchanged.
// Invalid JSON yields a *ParseError.
func Rewrite(data []byte, opts Options) (*Result, error) {
	return rewrite("", data, opts)
}

func rewrite(path string, data []byte, opts Options) (*Result, error) {
	if opts.ReportingBehavior == "" {
		opts.ReportingBehavior = config.DefaultReportingBehavior
	}
	if opts.SizeWarningMB > 0 && len(data) > opts.SizeWarningMB*1024*1024 {
		logger.Warn(fmt.Sprintf("Processing very large manifest (>%dMB); it is held in memory twice", opts.SizeWarningMB),
			logger.Path(path), logger.Int("bytes", len(data)))
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newParseError(path, err)
	}
	doc := bytes.TrimSpace(raw)

	res := &Result{Path: path}
	if len(doc) > 0 && doc[0] == '{' {
		var err error
		if doc, err = resetReportingBehavior(doc, opts.ReportingBehavior, res); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", KeyReportingBehavior, err)
		}
		if doc, err = clearExecutionDependencies(doc, res); err != nil {
			return nil, fmt.Errorf("rewrite %s: %w", KeyExecutionDependency, err)
		}
	} else {
		logger.Debug("Manifest root is not an object; nothing to rewrite", logger.Path(path))
	}

	out, err := format.PrettifyJSON(doc, format.IndentString(opts.Indent))
	if err != nil {
		return nil, fmt.Errorf("re-indent manifest: %w", err)
	}
	if opts.EnsureASCII {
		out = format.EscapeNonASCII(out)
	}
	if opts.TrailingNewline {
		out = append(out, '\n')
	}

	res.Output = out
	res.Changed = !bytes.Equal(data, out)
	return res, nil
}

func resetReportingBehavior(doc []byte, value string, res *Result) ([]byte, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	doc, n, err := collapse(doc, KeyReportingBehavior, replaceWith(encoded))
	if err != nil || n == 0 {
		return doc, err
	}
	res.ReportingBehaviorReset = true
	logger.Debug("Reset reporting behavior", logger.String("value", value), logger.Int("occurrences", n))
	return doc, nil
}

func clearExecutionDependencies(doc []byte, res *Result) ([]byte, error) {
	doc, _, err := collapse(doc, KeyProcesses, func(processes []byte, typ jsonparser.ValueType) ([]byte, error) {
		if typ != jsonparser.Array {
			return processes, nil
		}
		return eachObject(processes, func(i int, proc []byte) ([]byte, error) {
			return clearProcess(i, proc, res)
		})
	})
	return doc, err
}

func clearProcess(i int, proc []byte, res *Result) ([]byte, error) {
	proc, _, err := collapse(proc, KeyStartupConfigs, func(configs []byte, typ jsonparser.ValueType) ([]byte, error) {
		if typ != jsonparser.Array {
			return configs, nil
		}
		return eachObject(configs, func(j int, cfg []byte) ([]byte, error) {
			cfg, n, err := collapse(cfg, KeyExecutionDependency, replaceWith(emptyObject))
			if err != nil || n == 0 {
				return cfg, err
			}
			res.DependenciesCleared++
			logger.Debug("Cleared execution dependency",
				logger.Int("process", i), logger.Int("startup_config", j), logger.Int("occurrences", n))
			return cfg, nil
		})
	})
	return proc, err
}
