// Package config loads archdiag settings.
//
// Settings are layered, highest priority first:
//  1. Environment variables (ARCHDIAG_*, e.g. ARCHDIAG_RENDER_FORMAT)
//  2. Project config (.archdiag/config.yml)
//  3. User config (~/.archdiag/config.yml)
//  4. Built-in defaults
//
// Command-line flags override whatever the loader returns.
package config

import (
	"time"

	"github.com/mvp-joe/archdiag/internal/discovery"
	"github.com/mvp-joe/archdiag/internal/render"
)

// DirName is the directory holding config.yml, both in the project root and
// in the user's home directory.
const DirName = ".archdiag"

// Config represents the complete archdiag configuration.
type Config struct {
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Render  RenderConfig  `yaml:"render" mapstructure:"render"`
}

// ExtractConfig configures the extract command.
type ExtractConfig struct {
	Report      string   `yaml:"report" mapstructure:"report"`           // report destination
	OutputDir   string   `yaml:"output_dir" mapstructure:"output_dir"`   // where converted images are expected
	Ignore      []string `yaml:"ignore" mapstructure:"ignore"`           // glob patterns never scanned
	Concurrency int      `yaml:"concurrency" mapstructure:"concurrency"` // parallel document reads
}

// RenderConfig configures the external renderers.
type RenderConfig struct {
	DotBinary    string        `yaml:"dot_binary" mapstructure:"dot_binary"`
	PythonBinary string        `yaml:"python_binary" mapstructure:"python_binary"`
	Format       string        `yaml:"format" mapstructure:"format"` // dot -T format
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extract: ExtractConfig{
			Report:      "conversion-report.md",
			OutputDir:   "./diagrams",
			Ignore:      append([]string(nil), discovery.DefaultIgnore...),
			Concurrency: 4,
		},
		Render: RenderConfig{
			DotBinary:    "dot",
			PythonBinary: "python3",
			Format:       "png",
			Timeout:      render.DefaultTimeout,
		},
	}
}

// Graphviz returns a renderer configured from the render section.
func (c *Config) Graphviz() *render.Graphviz {
	return &render.Graphviz{
		Binary:  c.Render.DotBinary,
		Format:  c.Render.Format,
		Timeout: c.Render.Timeout,
	}
}

// Python returns a Python runner configured from the render section.
func (c *Config) Python() *render.Python {
	return &render.Python{
		Binary:  c.Render.PythonBinary,
		Timeout: c.Render.Timeout,
	}
}
