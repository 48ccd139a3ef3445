package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. EXECMANIFEST_OUTPUT_INDENT=2.
const EnvPrefix = "EXECMANIFEST"

// DefaultReportingBehavior is the value written over any existing reportingBehavior.
const DefaultReportingBehavior = "DOES-NOT-REPORT-EXECUTION-STATE"

// Config holds all configuration for execmanifest
type Config struct {
	Rewrite RewriteConfig `mapstructure:"rewrite"`
	Output  OutputConfig  `mapstructure:"output"`
	Input   InputConfig   `mapstructure:"input"`

	// Source is the config file that was read, empty when only defaults/env apply.
	Source string `mapstructure:"-"`
}

// RewriteConfig controls the values written into the manifest
type RewriteConfig struct {
	ReportingBehavior string `mapstructure:"reporting_behavior"`
}

// OutputConfig controls how the rewritten manifest is serialized
type OutputConfig struct {
	Indent          int  `mapstructure:"indent"` // spaces per level; 0 = line breaks only
	EnsureASCII     bool `mapstructure:"ensure_ascii"`
	TrailingNewline bool `mapstructure:"trailing_newline"`
}

// InputConfig holds input handling options
type InputConfig struct {
	SizeWarningMB int `mapstructure:"size_warning_mb"` // 0 disables the warning
}

var defaultConfig = Config{
	Rewrite: RewriteConfig{
		ReportingBehavior: DefaultReportingBehavior,
	},
	Output: OutputConfig{
		Indent:          4,
		EnsureASCII:     true,
		TrailingNewline: false,
	},
	Input: InputConfig{
		SizeWarningMB: 500,
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	c := defaultConfig
	return &c
}

// Load resolves configuration from defaults, an optional config file and
// EXECMANIFEST_* environment variables, in increasing precedence.
//
// With an explicit configFile the file must exist and parse. Otherwise
// .execmanifest.{yaml,yml,json,toml} is looked up in the working directory,
// $EXECMANIFEST_HOME and $HOME; finding none is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("rewrite.reporting_behavior", defaultConfig.Rewrite.ReportingBehavior)
	v.SetDefault("output.indent", defaultConfig.Output.Indent)
	v.SetDefault("output.ensure_ascii", defaultConfig.Output.EnsureASCII)
	v.SetDefault("output.trailing_newline", defaultConfig.Output.TrailingNewline)
	v.SetDefault("input.size_warning_mb", defaultConfig.Input.SizeWarningMB)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(".execmanifest")
		v.AddConfigPath(".")
		if home, err := GetHome(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.Source = v.ConfigFileUsed()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects settings the rewriter cannot honor.
func (c *Config) Validate() error {
	if c.Output.Indent < 0 {
		return fmt.Errorf("output.indent must be >= 0, got %d", c.Output.Indent)
	}
	if strings.TrimSpace(c.Rewrite.ReportingBehavior) == "" {
		return errors.New("rewrite.reporting_behavior must not be empty")
	}
	if c.Input.SizeWarningMB < 0 {
		return fmt.Errorf("input.size_warning_mb must be >= 0, got %d", c.Input.SizeWarningMB)
	}
	return nil
}

// GetHome returns the execmanifest home directory. It is only consulted for
// config lookup and never created.
func GetHome() (string, error) {
	if home := os.Getenv(EnvPrefix + "_HOME"); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".execmanifest.d"), nil
}
