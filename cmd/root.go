/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fulmenhq/execmanifest/pkg/buildinfo"
	"github.com/fulmenhq/execmanifest/pkg/config"
	"github.com/fulmenhq/execmanifest/pkg/exitcode"
	"github.com/fulmenhq/execmanifest/pkg/logger"
	"github.com/fulmenhq/execmanifest/pkg/manifest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const usageLine = "Usage: execmanifest <path_to_exec_config.json>"

// ErrRewriteNeeded is returned in --check mode when the manifest would change.
var ErrRewriteNeeded = exitcode.WithCode(exitcode.ValidationError, errors.New("manifest needs rewriting"))

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execmanifest <path_to_exec_config.json>",
		Short: "Detach an execution manifest from state reporting and startup dependencies",
		Long: `Execmanifest rewrites an execution manifest (JSON) in place:

  - a top-level "reportingBehavior" is set to DOES-NOT-REPORT-EXECUTION-STATE
  - every processes[].startupConfigs[].executionDependency is replaced with {}

Nothing else changes: unknown fields, key order and values are kept, and the
file is re-indented with 4 spaces.

Examples:
   execmanifest exec_config.json            # Rewrite in place
   execmanifest --no-op exec_config.json    # Print the result, leave the file alone
   execmanifest --check exec_config.json    # Exit 3 if the file would change`,
		Args:          exactlyOneManifest,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		RunE: runRewrite,
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Print the rewritten manifest to stdout instead of writing it")
	cmd.PersistentFlags().String("config", "", "Config file (default: .execmanifest.yaml in . or $HOME)")

	cmd.Flags().Bool("check", false, "Do not write; exit non-zero if the manifest would change")
	cmd.Flags().Int("indent", 4, "Spaces per indentation level (overrides output.indent)")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &manifest.UsageError{Err: err}
	})

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.Version = buildinfo.Version()
	cmd.SetVersionTemplate("execmanifest {{.Version}}\n")

	return cmd
}

// rootCmd represents the base command
var rootCmd = newRootCommand()

// Execute runs the root command against os.Args and exits with the mapped code.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	os.Exit(execute(rootCmd, os.Args[1:]))
}

// execute runs cmd and turns its error into an exit code. Usage errors print
// the usage line on stdout; everything else is reported through the logger.
func execute(cmd *cobra.Command, args []string) int {
	if args == nil {
		args = []string{} // cobra falls back to os.Args on nil
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return exitcode.Success
	}

	var usageErr *manifest.UsageError
	if errors.As(err, &usageErr) {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), usageLine)
		logger.Debug("Invalid invocation", logger.Err(err))
		return exitcode.ForError(err)
	}

	if !errors.Is(err, ErrRewriteNeeded) {
		logger.Error("Manifest rewrite failed", logger.Err(err))
	}
	return exitcode.ForError(err)
}

func exactlyOneManifest(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return &manifest.UsageError{Args: len(args)}
	}
	return nil
}

func runRewrite(cmd *cobra.Command, args []string) error {
	path := args[0]
	configFile, _ := cmd.Flags().GetString("config")
	checkOnly, _ := cmd.Flags().GetBool("check")
	noOp, _ := cmd.Flags().GetBool("no-op")

	indent, _ := cmd.Flags().GetInt("indent")
	indentSet := cmd.Flags().Changed("indent")
	if indentSet && indent < 0 {
		return &manifest.UsageError{Err: fmt.Errorf("--indent must be >= 0, got %d", indent)}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return exitcode.WithCode(exitcode.ConfigError, err)
	}
	if cfg.Source != "" {
		logger.Debug("Loaded configuration", logger.String("file", cfg.Source))
	}

	opts := manifest.OptionsFromConfig(cfg)
	if indentSet {
		opts.Indent = indent
	}
	opts.DryRun = checkOnly || noOp

	res, err := manifest.RewriteFile(path, opts)
	if err != nil {
		return err
	}

	fields := []logger.Field{
		logger.Path(path),
		logger.Bool("reporting_behavior_reset", res.ReportingBehaviorReset),
		logger.Int("dependencies_cleared", res.DependenciesCleared),
		logger.Bool("changed", res.Changed),
	}

	switch {
	case checkOnly:
		if res.Changed {
			logger.Warn("Manifest needs rewriting", fields...)
			return ErrRewriteNeeded
		}
		logger.Info("Manifest already rewritten", fields...)
	case noOp:
		out := cmd.OutOrStdout()
		if _, err := out.Write(res.Output); err != nil {
			return err
		}
		if !opts.TrailingNewline {
			_, _ = fmt.Fprintln(out)
		}
		logger.Info("Manifest not written", fields...)
	default:
		logger.Info("Manifest rewritten", fields...)
	}
	return nil
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	logLevel, known := logger.ParseLevel(logLevelStr)

	logCfg := logger.Config{
		Level:     logLevel,
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: logger.DefaultComponent,
		NoOp:      noOp,
		Output:    cmd.ErrOrStderr(),
	}

	if err := logger.Initialize(logCfg); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}

	if !known {
		logger.Warn("Unknown log level, using info", logger.String("log_level", logLevelStr))
	}

	if logger.Enabled(logger.TraceLevel) {
		logger.Trace("Flags", flagFields(cmd.Flags())...)
	}
}

func flagFields(flags *pflag.FlagSet) []logger.Field {
	var fields []logger.Field
	flags.Visit(func(f *pflag.Flag) {
		fields = append(fields, logger.String(f.Name, f.Value.String()))
	})
	return fields
}
