package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup location at empty temp dirs so a developer's
// own ~/.execmanifest.yaml cannot leak into the test.
func isolate(t *testing.T) string {
	t.Helper()
	work := t.TempDir()
	chdir(t, work)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvPrefix+"_HOME", t.TempDir())
	for _, key := range []string{
		"REWRITE_REPORTING_BEHAVIOR",
		"OUTPUT_INDENT",
		"OUTPUT_ENSURE_ASCII",
		"OUTPUT_TRAILING_NEWLINE",
		"INPUT_SIZE_WARNING_MB",
	} {
		t.Setenv(EnvPrefix+"_"+key, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+"_"+key))
	}
	return work
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultReportingBehavior, cfg.Rewrite.ReportingBehavior)
	assert.Equal(t, 4, cfg.Output.Indent)
	assert.True(t, cfg.Output.EnsureASCII)
	assert.False(t, cfg.Output.TrailingNewline)
	assert.Equal(t, 500, cfg.Input.SizeWarningMB)
	assert.Empty(t, cfg.Source)
}

func TestDefaultMatchesLoad(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadProjectFile(t *testing.T) {
	work := isolate(t)
	content := "output:\n  indent: 2\n  trailing_newline: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(work, ".execmanifest.yaml"), []byte(content), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Output.Indent)
	assert.True(t, cfg.Output.TrailingNewline)
	assert.True(t, cfg.Output.EnsureASCII, "unset keys keep their defaults")
	assert.Equal(t, ".execmanifest.yaml", filepath.Base(cfg.Source))
}

func TestLoadHomeDirFile(t *testing.T) {
	isolate(t)
	home := t.TempDir()
	t.Setenv(EnvPrefix+"_HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".execmanifest.json"), []byte(`{"output": {"ensure_ascii": false}}`), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.Output.EnsureASCII)
}

func TestLoadExplicitFile(t *testing.T) {
	work := isolate(t)
	path := filepath.Join(work, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[rewrite]\nreporting_behavior = \"CUSTOM\"\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "CUSTOM", cfg.Rewrite.ReportingBehavior)
	assert.Equal(t, path, cfg.Source)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	work := isolate(t)

	_, err := Load(filepath.Join(work, "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	work := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".execmanifest.yaml"), []byte("output: [unterminated\n"), 0o600))

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadEnvOverride(t *testing.T) {
	work := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(work, ".execmanifest.yaml"), []byte("output:\n  indent: 2\n"), 0o600))
	t.Setenv(EnvPrefix+"_OUTPUT_INDENT", "8")
	t.Setenv(EnvPrefix+"_OUTPUT_ENSURE_ASCII", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Output.Indent)
	assert.False(t, cfg.Output.EnsureASCII)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv(EnvPrefix+"_OUTPUT_INDENT", "-1")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.indent")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero indent", func(c *Config) { c.Output.Indent = 0 }, false},
		{"negative indent", func(c *Config) { c.Output.Indent = -2 }, true},
		{"blank sentinel", func(c *Config) { c.Rewrite.ReportingBehavior = "  " }, true},
		{"negative size warning", func(c *Config) { c.Input.SizeWarningMB = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetHome(t *testing.T) {
	t.Setenv(EnvPrefix+"_HOME", "/opt/execmanifest")
	home, err := GetHome()
	require.NoError(t, err)
	assert.Equal(t, "/opt/execmanifest", home)

	t.Setenv(EnvPrefix+"_HOME", "")
	t.Setenv("HOME", "/home/tester")
	home, err = GetHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".execmanifest.d"), home)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
