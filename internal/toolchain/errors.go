// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"

	"archbundle-cli/pkg/bundle"
)

// ErrBuild is matched by errors.Is for any BuildError.
var ErrBuild = errors.New("toolchain build failed")

// BuildError reports a failed toolchain invocation: nonzero exit, missing
// output file, or timeout. Builds are not retried automatically; a
// missing toolchain or broken source will not self-resolve.
type BuildError struct {
	// Target is the build target whose invocation failed.
	Target bundle.BuildTarget
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %v", e.Target.Identifier(), e.Err)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *BuildError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBuild, so callers can detect the
// category without knowing the concrete type.
func (e *BuildError) Is(target error) bool { return target == ErrBuild }
