// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors wrapped by the typed error structs below. Callers use
// errors.Is against these for programmatic category detection; errors.As
// against the structs for details.
var (
	// ErrNoArtifacts is returned when an assembly is requested with an
	// empty artifact set.
	ErrNoArtifacts = errors.New("no artifacts to bundle")

	// ErrDuplicateSlice is the sentinel wrapped by DuplicateSliceError.
	ErrDuplicateSlice = errors.New("duplicate slice")

	// ErrCopyIntegrity is the sentinel wrapped by CopyIntegrityError.
	ErrCopyIntegrity = errors.New("copy integrity check failed")

	// ErrValidation is the sentinel wrapped by ValidationError.
	ErrValidation = errors.New("bundle validation failed")
)

// DuplicateSliceError is returned when two artifacts or slice descriptors
// resolve to the same (architecture, platform, variant) triple. This is a
// configuration error and is never retried.
type DuplicateSliceError struct {
	Triple Triple
}

// Error implements the error interface.
func (e *DuplicateSliceError) Error() string {
	return fmt.Sprintf("duplicate slice for triple %s: two targets resolve to the same architecture, platform, and variant", e.Triple)
}

// Unwrap returns ErrDuplicateSlice so callers can use errors.Is.
func (e *DuplicateSliceError) Unwrap() error { return ErrDuplicateSlice }

// CopyIntegrityError is returned when an artifact's bytes read back from
// the staging area do not match its recorded fingerprint. It indicates a
// filesystem or storage fault; the whole assembly is aborted and staging
// discarded, so the operation is safe to retry.
type CopyIntegrityError struct {
	// Identifier is the slice the mismatch was detected in.
	Identifier string
	// Want is the fingerprint recorded when the artifact was produced.
	Want Fingerprint
	// Got is the fingerprint of the bytes found in the staging area.
	Got Fingerprint
}

// Error implements the error interface.
func (e *CopyIntegrityError) Error() string {
	return fmt.Sprintf("slice %s: copied library does not match source fingerprint (want %s, got %s)",
		e.Identifier, e.Want.Short(), e.Got.Short())
}

// Unwrap returns ErrCopyIntegrity so callers can use errors.Is.
func (e *CopyIntegrityError) Unwrap() error { return ErrCopyIntegrity }

// ValidationError reports one or more bundle invariant violations detected
// before publish. The previous bundle at the destination, if any, is left
// untouched.
type ValidationError struct {
	Issues []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch len(e.Issues) {
	case 0:
		return "bundle validation failed"
	case 1:
		return "bundle validation failed: " + e.Issues[0]
	default:
		return fmt.Sprintf("bundle validation failed (%d issues): %s",
			len(e.Issues), strings.Join(e.Issues, "; "))
	}
}

// Unwrap returns ErrValidation so callers can use errors.Is.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// add appends an issue to the error.
func (e *ValidationError) add(format string, args ...any) {
	e.Issues = append(e.Issues, fmt.Sprintf(format, args...))
}

// errOrNil returns the ValidationError if it holds any issues, nil
// otherwise.
func (e *ValidationError) errOrNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}
