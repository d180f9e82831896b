package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from files and environment variables.
	// Priority: defaults → user config → project config → environment (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
	homeDir string // empty skips the user config
}

// NewLoader creates a loader for the project rooted at rootDir. The user
// config is read from the current user's home directory when it can be
// determined.
func NewLoader(rootDir string) Loader {
	home, _ := os.UserHomeDir()
	return &loader{rootDir: rootDir, homeDir: home}
}

// Load merges the configuration sources and validates the result.
func (l *loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix("ARCHDIAG")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., ARCHDIAG_EXTRACT_REPORT)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvVars(v)

	setDefaults(v)

	if l.homeDir != "" {
		if err := mergeConfigFile(v, filepath.Join(l.homeDir, DirName)); err != nil {
			return nil, err
		}
	}
	if err := mergeConfigFile(v, filepath.Join(l.rootDir, DirName)); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// mergeConfigFile merges dir/config.yml (or config.yaml) into v. A missing
// file is not an error.
func mergeConfigFile(v *viper.Viper, dir string) error {
	for _, name := range []string{"config.yml", "config.yaml"} {
		path := filepath.Join(dir, name)
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		err = v.MergeConfig(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		return nil
	}
	return nil
}

func bindEnvVars(v *viper.Viper) {
	// Extract configuration
	v.BindEnv("extract.report")
	v.BindEnv("extract.output_dir")
	v.BindEnv("extract.ignore")
	v.BindEnv("extract.concurrency")

	// Render configuration
	v.BindEnv("render.dot_binary")
	v.BindEnv("render.python_binary")
	v.BindEnv("render.format")
	v.BindEnv("render.timeout")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extract.report", defaults.Extract.Report)
	v.SetDefault("extract.output_dir", defaults.Extract.OutputDir)
	v.SetDefault("extract.ignore", defaults.Extract.Ignore)
	v.SetDefault("extract.concurrency", defaults.Extract.Concurrency)

	v.SetDefault("render.dot_binary", defaults.Render.DotBinary)
	v.SetDefault("render.python_binary", defaults.Render.PythonBinary)
	v.SetDefault("render.format", defaults.Render.Format)
	v.SetDefault("render.timeout", defaults.Render.Timeout)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
