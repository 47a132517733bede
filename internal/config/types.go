// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// InvokerModeExec runs the toolchain as a child process.
	InvokerModeExec InvokerMode = "exec"
	// InvokerModeShell runs the toolchain through the embedded mvdan/sh interpreter.
	InvokerModeShell InvokerMode = "shell"
)

var (
	// ErrInvalidInvokerMode is returned when an InvokerMode value is not recognized.
	ErrInvalidInvokerMode = errors.New("invalid invoker mode")
	// ErrInvalidToolchainConfig is the sentinel error wrapped by InvalidToolchainConfigError.
	ErrInvalidToolchainConfig = errors.New("invalid toolchain config")
	// ErrInvalidBundleConfig is the sentinel error wrapped by InvalidBundleConfigError.
	ErrInvalidBundleConfig = errors.New("invalid bundle config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// InvokerMode selects how the toolchain is invoked per build target.
	InvokerMode string

	// InvalidInvokerModeError is returned when an InvokerMode value is not recognized.
	// It wraps ErrInvalidInvokerMode for errors.Is() compatibility.
	InvalidInvokerModeError struct {
		Value InvokerMode
	}

	// ToolchainConfig configures how per-target static libraries are built.
	ToolchainConfig struct {
		// Mode selects the invoker: "exec" (child process) or "shell" (embedded interpreter).
		Mode InvokerMode `json:"mode" mapstructure:"mode"`
		// Command is the argv template for exec mode. Elements may carry
		// {arch}, {platform}, {variant}, {min_os}, {output} and {source_root}
		// placeholders.
		Command []string `json:"command" mapstructure:"command"`
		// Script is the shell script template for shell mode. It sees the same
		// placeholders plus the ARCHBUNDLE_* environment variables.
		Script string `json:"script" mapstructure:"script"`
		// SourceRoot is the working directory for toolchain invocations.
		// Empty means the current directory.
		SourceRoot string `json:"source_root" mapstructure:"source_root"`
		// Concurrency bounds parallel toolchain invocations. Zero means one
		// per CPU.
		Concurrency int `json:"concurrency" mapstructure:"concurrency"`
		// Timeout bounds each individual invocation, as a Go duration string
		// (e.g. "10m"). Empty means no timeout.
		Timeout string `json:"timeout" mapstructure:"timeout"`
	}

	// InvalidToolchainConfigError is returned when a ToolchainConfig has invalid
	// fields. It wraps ErrInvalidToolchainConfig for errors.Is() compatibility
	// and collects field-level validation errors.
	InvalidToolchainConfigError struct {
		FieldErrors []error
	}

	// BundleConfig configures bundle assembly and validation.
	BundleConfig struct {
		// AllowedArchitectures is the allow-list enforced on every slice.
		AllowedArchitectures []string `json:"allowed_architectures" mapstructure:"allowed_architectures"`
		// LibraryName overrides the library file base name. Empty means the
		// bundle name is used.
		LibraryName string `json:"library_name" mapstructure:"library_name"`
	}

	// InvalidBundleConfigError is returned when a BundleConfig has invalid
	// fields. It wraps ErrInvalidBundleConfig for errors.Is() compatibility
	// and collects field-level validation errors.
	InvalidBundleConfigError struct {
		FieldErrors []error
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config holds the application configuration.
	Config struct {
		// Toolchain configures how per-target libraries are built
		Toolchain ToolchainConfig `json:"toolchain" mapstructure:"toolchain"`
		// Bundle configures bundle assembly and validation
		Bundle BundleConfig `json:"bundle" mapstructure:"bundle"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// IsValid returns whether the InvokerMode is a recognized value.
func (m InvokerMode) IsValid() (bool, []error) {
	switch m {
	case InvokerModeExec, InvokerModeShell:
		return true, nil
	default:
		return false, []error{&InvalidInvokerModeError{Value: m}}
	}
}

func (e *InvalidInvokerModeError) Error() string {
	return fmt.Sprintf("invalid invoker mode %q (must be %q or %q)", e.Value, InvokerModeExec, InvokerModeShell)
}

func (e *InvalidInvokerModeError) Unwrap() error { return ErrInvalidInvokerMode }

// IsConfigured reports whether the toolchain has a command or script for its
// mode. An unconfigured toolchain is valid (the flag layer may supply one)
// but cannot build anything.
func (c ToolchainConfig) IsConfigured() bool {
	switch c.Mode {
	case InvokerModeShell:
		return strings.TrimSpace(c.Script) != ""
	default:
		return len(c.Command) > 0
	}
}

// ParsedTimeout returns the Timeout field as a time.Duration. The zero
// duration means no timeout.
func (c ToolchainConfig) ParsedTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("toolchain timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("toolchain timeout must not be negative: %s", c.Timeout)
	}
	return d, nil
}

// IsValid returns whether the ToolchainConfig has valid fields.
func (c ToolchainConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Mode.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("toolchain concurrency must not be negative: %d", c.Concurrency))
	}
	if _, err := c.ParsedTimeout(); err != nil {
		errs = append(errs, err)
	}
	for i, arg := range c.Command {
		if strings.TrimSpace(arg) == "" {
			errs = append(errs, fmt.Errorf("toolchain command element %d is empty", i))
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidToolchainConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidToolchainConfigError) Error() string {
	return fmt.Sprintf("invalid toolchain config: %v", errors.Join(e.FieldErrors...))
}

func (e *InvalidToolchainConfigError) Unwrap() error { return ErrInvalidToolchainConfig }

// IsValid returns whether the BundleConfig has valid fields.
func (c BundleConfig) IsValid() (bool, []error) {
	var errs []error
	seen := make(map[string]bool, len(c.AllowedArchitectures))
	for i, arch := range c.AllowedArchitectures {
		if strings.TrimSpace(arch) == "" {
			errs = append(errs, fmt.Errorf("allowed_architectures[%d] is empty", i))
			continue
		}
		if seen[arch] {
			errs = append(errs, fmt.Errorf("allowed_architectures[%d]: duplicate entry %q", i, arch))
		}
		seen[arch] = true
	}
	if c.LibraryName != "" && strings.TrimSpace(c.LibraryName) == "" {
		errs = append(errs, errors.New("library_name must not be whitespace-only"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBundleConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidBundleConfigError) Error() string {
	return fmt.Sprintf("invalid bundle config: %v", errors.Join(e.FieldErrors...))
}

func (e *InvalidBundleConfigError) Unwrap() error { return ErrInvalidBundleConfig }

// IsValid returns whether the Config has valid fields. It aggregates the
// field errors of every sub-component.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Toolchain.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Bundle.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in defaults used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Toolchain: ToolchainConfig{
			Mode:    InvokerModeExec,
			Timeout: "10m",
		},
		Bundle: BundleConfig{
			AllowedArchitectures: []string{"arm64", "x86_64"},
		},
	}
}
