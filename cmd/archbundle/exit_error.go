// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"archbundle-cli/internal/issue"
	"archbundle-cli/internal/toolchain"
	"archbundle-cli/pkg/bundle"
	"archbundle-cli/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// classifyError maps a failure from the resolver/assembler pipeline to its
// exit code and troubleshooting issue. Unknown errors fall back to the
// usage code with no issue page.
func classifyError(err error) (*ExitError, issue.Id) {
	switch {
	case errors.Is(err, bundle.ErrDuplicateSlice):
		return &ExitError{Code: types.ExitDuplicateSlice, Err: err}, issue.DuplicateSliceId
	case errors.Is(err, bundle.ErrCopyIntegrity):
		return &ExitError{Code: types.ExitCopyIntegrity, Err: err}, issue.CopyIntegrityFailedId
	case errors.Is(err, bundle.ErrValidation):
		return &ExitError{Code: types.ExitValidationFailed, Err: err}, issue.BundleValidationFailedId
	case errors.Is(err, toolchain.ErrBuild):
		return &ExitError{Code: types.ExitBuildFailed, Err: err}, issue.BuildFailedId
	default:
		return &ExitError{Code: types.ExitUsage, Err: err}, 0
	}
}
