// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

// ExitCode is a process exit status, 0-255 on POSIX systems. The zero
// value means success.
type ExitCode int

// Exit codes reported by the archbundle CLI. Usage and configuration
// problems share code 2; each assembly failure category gets its own
// code so callers can branch without parsing stderr.
const (
	ExitSuccess          ExitCode = 0
	ExitUsage            ExitCode = 2
	ExitBuildFailed      ExitCode = 10
	ExitDuplicateSlice   ExitCode = 11
	ExitCopyIntegrity    ExitCode = 12
	ExitValidationFailed ExitCode = 13
)

// InvalidExitCodeError is returned when an ExitCode is outside 0-255.
type InvalidExitCodeError struct {
	Value ExitCode
}

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is checks.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the valid range.
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the exit code indicates success.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// String returns the decimal representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
