package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrEmptyReport indicates a missing report destination
	ErrEmptyReport = errors.New("empty report path")

	// ErrInvalidConcurrency indicates a non-positive worker count
	ErrInvalidConcurrency = errors.New("invalid concurrency")

	// ErrInvalidIgnore indicates an ignore pattern that does not compile
	ErrInvalidIgnore = errors.New("invalid ignore pattern")

	// ErrEmptyBinary indicates a missing renderer binary name
	ErrEmptyBinary = errors.New("empty renderer binary")

	// ErrInvalidFormat indicates an output format dot cannot produce
	ErrInvalidFormat = errors.New("invalid render format")

	// ErrInvalidTimeout indicates a non-positive renderer timeout
	ErrInvalidTimeout = errors.New("invalid render timeout")
)

// validFormats are the dot output formats archdiag writes.
var validFormats = []string{"png", "svg", "pdf", "jpg"}

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateExtract(&cfg.Extract); err != nil {
		errs = append(errs, err)
	}

	if err := validateRender(&cfg.Render); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateExtract(cfg *ExtractConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Report) == "" {
		errs = append(errs, fmt.Errorf("%w: report is required", ErrEmptyReport))
	}

	if cfg.Concurrency <= 0 {
		errs = append(errs, fmt.Errorf("%w: concurrency must be positive, got %d", ErrInvalidConcurrency, cfg.Concurrency))
	}

	for _, pattern := range cfg.Ignore {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %q: %v", ErrInvalidIgnore, pattern, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateRender(cfg *RenderConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.DotBinary) == "" {
		errs = append(errs, fmt.Errorf("%w: dot_binary is required", ErrEmptyBinary))
	}

	if strings.TrimSpace(cfg.PythonBinary) == "" {
		errs = append(errs, fmt.Errorf("%w: python_binary is required", ErrEmptyBinary))
	}

	format := strings.ToLower(cfg.Format)
	valid := false
	for _, f := range validFormats {
		if format == f {
			valid = true
			break
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("%w: must be one of %s, got '%s'", ErrInvalidFormat, strings.Join(validFormats, ", "), cfg.Format))
	}

	if cfg.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidTimeout, cfg.Timeout))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every joined error with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}
