// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestInvokerMode_IsValid(t *testing.T) {
	testCases := []struct {
		mode  InvokerMode
		valid bool
	}{
		{InvokerModeExec, true},
		{InvokerModeShell, true},
		{"", false},
		{"container", false},
		{"EXEC", false},
	}

	for _, tc := range testCases {
		t.Run(string(tc.mode), func(t *testing.T) {
			valid, errs := tc.mode.IsValid()
			if valid != tc.valid {
				t.Fatalf("IsValid() = %v, want %v (errs: %v)", valid, tc.valid, errs)
			}
			if !tc.valid && !errors.Is(errs[0], ErrInvalidInvokerMode) {
				t.Errorf("error does not match ErrInvalidInvokerMode: %v", errs[0])
			}
		})
	}
}

func TestToolchainConfig_IsConfigured(t *testing.T) {
	testCases := []struct {
		name string
		cfg  ToolchainConfig
		want bool
	}{
		{"exec with command", ToolchainConfig{Mode: InvokerModeExec, Command: []string{"make"}}, true},
		{"exec without command", ToolchainConfig{Mode: InvokerModeExec}, false},
		{"shell with script", ToolchainConfig{Mode: InvokerModeShell, Script: "make"}, true},
		{"shell with blank script", ToolchainConfig{Mode: InvokerModeShell, Script: "  \n"}, false},
		{"shell ignores command", ToolchainConfig{Mode: InvokerModeShell, Command: []string{"make"}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.IsConfigured(); got != tc.want {
				t.Errorf("IsConfigured() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToolchainConfig_ParsedTimeout(t *testing.T) {
	testCases := []struct {
		timeout string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"10m", 10 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{"-5s", 0, true},
		{"soon", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.timeout, func(t *testing.T) {
			cfg := ToolchainConfig{Timeout: tc.timeout}
			got, err := cfg.ParsedTimeout()
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParsedTimeout() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsedTimeout() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("ParsedTimeout() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestToolchainConfig_IsValid(t *testing.T) {
	valid := ToolchainConfig{Mode: InvokerModeExec, Command: []string{"make"}, Timeout: "10m"}
	if ok, errs := valid.IsValid(); !ok {
		t.Fatalf("IsValid() = false for valid config: %v", errs)
	}

	invalid := ToolchainConfig{Mode: "warp", Concurrency: -2, Timeout: "soon", Command: []string{" "}}
	ok, errs := invalid.IsValid()
	if ok {
		t.Fatal("IsValid() = true for invalid config")
	}
	if !errors.Is(errs[0], ErrInvalidToolchainConfig) {
		t.Errorf("error does not match ErrInvalidToolchainConfig: %v", errs[0])
	}
	var tcErr *InvalidToolchainConfigError
	if !errors.As(errs[0], &tcErr) {
		t.Fatalf("error is not *InvalidToolchainConfigError: %v", errs[0])
	}
	if len(tcErr.FieldErrors) != 4 {
		t.Errorf("got %d field errors, want 4: %v", len(tcErr.FieldErrors), tcErr.FieldErrors)
	}
}

func TestBundleConfig_IsValid(t *testing.T) {
	valid := BundleConfig{AllowedArchitectures: []string{"arm64", "x86_64"}}
	if ok, errs := valid.IsValid(); !ok {
		t.Fatalf("IsValid() = false for valid config: %v", errs)
	}

	testCases := []struct {
		name string
		cfg  BundleConfig
	}{
		{"duplicate architecture", BundleConfig{AllowedArchitectures: []string{"arm64", "arm64"}}},
		{"empty architecture", BundleConfig{AllowedArchitectures: []string{"arm64", " "}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ok, errs := tc.cfg.IsValid()
			if ok {
				t.Fatal("IsValid() = true for invalid config")
			}
			if !errors.Is(errs[0], ErrInvalidBundleConfig) {
				t.Errorf("error does not match ErrInvalidBundleConfig: %v", errs[0])
			}
		})
	}
}

func TestConfig_IsValidAggregatesFieldErrors(t *testing.T) {
	cfg := &Config{
		Toolchain: ToolchainConfig{Mode: "warp"},
		Bundle:    BundleConfig{AllowedArchitectures: []string{"arm64", "arm64"}},
	}

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("IsValid() = true for invalid config")
	}
	if !errors.Is(errs[0], ErrInvalidConfig) {
		t.Errorf("error does not match ErrInvalidConfig: %v", errs[0])
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error is not *InvalidConfigError: %v", errs[0])
	}
	if len(cfgErr.FieldErrors) != 2 {
		t.Errorf("got %d field errors, want 2: %v", len(cfgErr.FieldErrors), cfgErr.FieldErrors)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if ok, errs := cfg.IsValid(); !ok {
		t.Fatalf("DefaultConfig() is invalid: %v", errs)
	}
	if cfg.Toolchain.IsConfigured() {
		t.Error("DefaultConfig() should not carry a toolchain command")
	}
}
