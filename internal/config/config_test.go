package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .archdiag/config.yml and .archdiag/config.yaml
// - Load() merges a partial config file with defaults
// - Project config overrides user config key by key
// - Environment variables override config files and defaults (including lists and durations)
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects empty report, bad concurrency, bad ignore globs
// - Validate() rejects empty binaries, unknown formats, non-positive timeouts
// - Validate() reports every invalid field and keeps each sentinel matchable
// - Graphviz() and Python() carry the render settings

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

// load runs a loader that never sees the real home directory.
func load(t *testing.T, root, home string) (*Config, error) {
	t.Helper()
	return (&loader{rootDir: root, homeDir: home}).Load()
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "conversion-report.md", cfg.Extract.Report)
	assert.Equal(t, "./diagrams", cfg.Extract.OutputDir)
	assert.Equal(t, []string{"node_modules/**", ".git/**", "vendor/**"}, cfg.Extract.Ignore)
	assert.Equal(t, 4, cfg.Extract.Concurrency)

	assert.Equal(t, "dot", cfg.Render.DotBinary)
	assert.Equal(t, "python3", cfg.Render.PythonBinary)
	assert.Equal(t, "png", cfg.Render.Format)
	assert.Equal(t, 60*time.Second, cfg.Render.Timeout)

	assert.NoError(t, Validate(cfg))
}

func TestDefault_IgnoreIsACopy(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extract.Ignore[0] = "changed/**"

	assert.Equal(t, "node_modules/**", Default().Extract.Ignore[0])
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	cfg, err := load(t, t.TempDir(), t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_LoadsFromConfigYml(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", `
extract:
  report: docs/report.md
  output_dir: images
  ignore:
    - "drafts/**"
  concurrency: 2

render:
  dot_binary: /opt/graphviz/bin/dot
  python_binary: python3.12
  format: svg
  timeout: 90s
`)

	cfg, err := load(t, root, "")
	require.NoError(t, err)

	assert.Equal(t, "docs/report.md", cfg.Extract.Report)
	assert.Equal(t, "images", cfg.Extract.OutputDir)
	assert.Equal(t, []string{"drafts/**"}, cfg.Extract.Ignore)
	assert.Equal(t, 2, cfg.Extract.Concurrency)

	assert.Equal(t, "/opt/graphviz/bin/dot", cfg.Render.DotBinary)
	assert.Equal(t, "python3.12", cfg.Render.PythonBinary)
	assert.Equal(t, "svg", cfg.Render.Format)
	assert.Equal(t, 90*time.Second, cfg.Render.Timeout)
}

func TestLoad_LoadsFromConfigYaml(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yaml", "extract:\n  report: out.md\n")

	cfg, err := load(t, root, "")
	require.NoError(t, err)

	assert.Equal(t, "out.md", cfg.Extract.Report)
}

func TestLoad_MergesConfigWithDefaults(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "render:\n  format: pdf\n")

	cfg, err := load(t, root, "")
	require.NoError(t, err)

	assert.Equal(t, "pdf", cfg.Render.Format)
	assert.Equal(t, "dot", cfg.Render.DotBinary)
	assert.Equal(t, 60*time.Second, cfg.Render.Timeout)
	assert.Equal(t, "conversion-report.md", cfg.Extract.Report)
}

func TestLoad_ProjectOverridesUserConfig(t *testing.T) {
	root := t.TempDir()
	home := t.TempDir()
	writeConfig(t, home, "config.yml", "extract:\n  concurrency: 8\n  report: user.md\nrender:\n  format: svg\n")
	writeConfig(t, root, "config.yml", "extract:\n  report: project.md\n")

	cfg, err := load(t, root, home)
	require.NoError(t, err)

	assert.Equal(t, "project.md", cfg.Extract.Report)
	assert.Equal(t, 8, cfg.Extract.Concurrency)
	assert.Equal(t, "svg", cfg.Render.Format)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "extract:\n  report: file.md\n")

	t.Setenv("ARCHDIAG_EXTRACT_REPORT", "env.md")
	t.Setenv("ARCHDIAG_EXTRACT_IGNORE", "a/**,b/**")
	t.Setenv("ARCHDIAG_RENDER_TIMEOUT", "2m")
	t.Setenv("ARCHDIAG_EXTRACT_CONCURRENCY", "3")

	cfg, err := load(t, root, "")
	require.NoError(t, err)

	assert.Equal(t, "env.md", cfg.Extract.Report)
	assert.Equal(t, []string{"a/**", "b/**"}, cfg.Extract.Ignore)
	assert.Equal(t, 2*time.Minute, cfg.Render.Timeout)
	assert.Equal(t, 3, cfg.Extract.Concurrency)
}

func TestLoad_MalformedYAML(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "extract:\n  report: [unclosed\n")

	_, err := load(t, root, "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "config.yml", "render:\n  format: bmp\n")

	_, err := load(t, root, "")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty report", func(c *Config) { c.Extract.Report = "  " }, ErrEmptyReport},
		{"zero concurrency", func(c *Config) { c.Extract.Concurrency = 0 }, ErrInvalidConcurrency},
		{"bad ignore glob", func(c *Config) { c.Extract.Ignore = []string{"docs/[abc"} }, ErrInvalidIgnore},
		{"empty dot binary", func(c *Config) { c.Render.DotBinary = "" }, ErrEmptyBinary},
		{"empty python binary", func(c *Config) { c.Render.PythonBinary = "" }, ErrEmptyBinary},
		{"unknown format", func(c *Config) { c.Render.Format = "gif" }, ErrInvalidFormat},
		{"zero timeout", func(c *Config) { c.Render.Timeout = 0 }, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_FormatIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Render.Format = "SVG"

	assert.NoError(t, Validate(cfg))
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extract.Report = ""
	cfg.Extract.Concurrency = -1
	cfg.Render.Timeout = -time.Second

	err := Validate(cfg)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "validation failed")
	assert.True(t, errors.Is(err, ErrEmptyReport))
	assert.True(t, errors.Is(err, ErrInvalidConcurrency))
	assert.True(t, errors.Is(err, ErrInvalidTimeout))
	assert.False(t, errors.Is(err, ErrInvalidFormat))
}

func TestConfig_Renderers(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Render.DotBinary = "/usr/local/bin/dot"
	cfg.Render.Format = "svg"
	cfg.Render.Timeout = 5 * time.Second

	gv := cfg.Graphviz()
	assert.Equal(t, "/usr/local/bin/dot", gv.Binary)
	assert.Equal(t, "svg", gv.Format)
	assert.Equal(t, 5*time.Second, gv.Timeout)

	py := cfg.Python()
	assert.Equal(t, "python3", py.Binary)
	assert.Equal(t, 5*time.Second, py.Timeout)
}
