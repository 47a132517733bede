// SPDX-License-Identifier: MPL-2.0

// Package bundle assembles architecture-specific static-library artifacts
// into a single distributable bundle directory.
//
// A bundle is a self-contained folder with a ".bundle" suffix containing one
// slice directory per (architecture, platform, variant) triple plus a
// top-level manifest. A downstream toolchain reads the manifest, selects the
// slice matching its own build context, and links against that slice's
// library file.
//
// Bundle structure:
//
//	<name>.bundle/
//	  manifest.json                   top-level manifest (all slices)
//	  <platform>-<arch>[-<variant>]/
//	    lib<name>.a                   static library for that triple
//	    slice.toml                    per-slice descriptor
//
// Bundles are built in a staging directory and published with a single
// atomic rename, so readers of the destination never observe a partially
// written bundle.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"archbundle-cli/pkg/platform"
)

const (
	// BundleSuffix is the standard suffix for bundle directories.
	BundleSuffix = ".bundle"

	// ManifestFileName is the name of the top-level manifest file.
	ManifestFileName = "manifest.json"

	// SliceDescriptorFileName is the name of the per-slice descriptor file.
	SliceDescriptorFileName = "slice.toml"

	// FormatVersion is the bundle manifest format version. It must be bumped
	// on any incompatible manifest schema change.
	FormatVersion = "1.0"
)

// bundleNameRegex validates the bundle folder name prefix (before .bundle).
// Must start with a letter, contain only alphanumeric characters, with
// optional dot-, dash-, or underscore-separated segments. Compatible with
// RDNS naming (e.g., "com.example.mdnspeer").
var bundleNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]*([.\-_][a-zA-Z0-9]+)*$`)

// Platform identifies the runtime environment a slice targets.
type Platform string

const (
	// PlatformDevice targets physical devices.
	PlatformDevice Platform = "device"
	// PlatformSimulator targets device simulators running on a host machine.
	PlatformSimulator Platform = "simulator"
	// PlatformDesktop targets desktop operating systems.
	PlatformDesktop Platform = "desktop"
)

// IsValid reports whether the Platform is one of the defined values.
func (p Platform) IsValid() bool {
	switch p {
	case PlatformDevice, PlatformSimulator, PlatformDesktop:
		return true
	}
	return false
}

// String returns the platform name.
func (p Platform) String() string { return string(p) }

// Triple uniquely identifies one slice of a bundle. No two slices in a
// bundle may share the same Triple.
type Triple struct {
	// Architecture is the CPU architecture (e.g., "arm64", "x86_64").
	Architecture string
	// Platform is the targeted runtime environment.
	Platform Platform
	// Variant further distinguishes builds for the same architecture and
	// platform (e.g., "maccatalyst"). Usually empty.
	Variant string
}

// Identifier returns the canonical slice directory name for the triple:
// "<platform>-<arch>" or "<platform>-<arch>-<variant>".
func (t Triple) Identifier() string {
	id := string(t.Platform) + "-" + t.Architecture
	if t.Variant != "" {
		id += "-" + t.Variant
	}
	return id
}

// String returns the identifier form of the triple.
func (t Triple) String() string { return t.Identifier() }

// IsValid reports whether the triple has a non-empty architecture and a
// recognized platform, and a list of validation errors if it does not.
func (t Triple) IsValid() (bool, []error) {
	var errs []error
	if t.Architecture == "" {
		errs = append(errs, fmt.Errorf("architecture cannot be empty"))
	}
	if !t.Platform.IsValid() {
		errs = append(errs, fmt.Errorf("unknown platform %q (must be device, simulator, or desktop)", t.Platform))
	}
	return len(errs) == 0, errs
}

// BuildTarget describes one desired toolchain output. It is defined by
// caller configuration and never mutated; one BuildTarget maps to exactly
// one Artifact after a successful build.
type BuildTarget struct {
	Triple
	// MinOSVersion is the minimum supported OS version for the build
	// (e.g., "14.0"). Optional.
	MinOSVersion string
}

// Artifact references one compiled static library produced for a
// BuildTarget. Artifacts are created by the target resolver and never
// mutated afterwards.
type Artifact struct {
	// Target is the build target the artifact was produced for.
	Target BuildTarget
	// Path is the absolute path to the compiled static library file.
	Path string
	// Fingerprint is the BLAKE3 digest of the library file's bytes, used
	// to verify copies into the bundle staging area.
	Fingerprint Fingerprint
}

// Bundle represents a published, validated bundle on disk.
type Bundle struct {
	// Path is the absolute path to the bundle directory.
	Path string
	// Name is the bundle name (folder name without the .bundle suffix).
	Name string
	// Manifest is the decoded top-level manifest.
	Manifest Manifest
}

// LibraryFileName returns the conventional static library file name for
// the given library name ("lib<name>.a").
func LibraryFileName(libraryName string) string {
	return "lib" + libraryName + ".a"
}

// ParseBundleName extracts and validates the bundle name from a folder
// name. The folder name must end with .bundle and have a valid prefix.
func ParseBundleName(folderName string) (string, error) {
	if !strings.HasSuffix(folderName, BundleSuffix) {
		return "", fmt.Errorf("folder name must end with %q", BundleSuffix)
	}

	prefix := strings.TrimSuffix(folderName, BundleSuffix)
	if prefix == "" {
		return "", fmt.Errorf("bundle name cannot be empty (folder name cannot be just %q)", BundleSuffix)
	}
	if strings.HasPrefix(prefix, ".") {
		return "", fmt.Errorf("bundle name cannot start with a dot")
	}
	if !bundleNameRegex.MatchString(prefix) {
		return "", fmt.Errorf("bundle name %q is invalid: must start with a letter and contain only alphanumeric characters with optional dot-, dash-, or underscore-separated segments", prefix)
	}

	return prefix, nil
}

// ValidateName checks if a bundle name is valid. Returns nil if valid, or
// an error describing the problem.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("bundle name cannot be empty")
	}
	if !bundleNameRegex.MatchString(name) {
		return fmt.Errorf("bundle name %q is invalid: must start with a letter and contain only alphanumeric characters with optional dot-, dash-, or underscore-separated segments", name)
	}
	// The bundle directory must be creatable on every platform.
	if platform.IsWindowsReservedName(name) {
		return fmt.Errorf("bundle name %q is a reserved filename on Windows", name)
	}
	return nil
}

// IsBundle checks whether the given path looks like a published bundle
// directory. This is a quick structural check; use Open for full
// validation.
func IsBundle(path string) bool {
	base := filepath.Base(path)
	if _, err := ParseBundleName(base); err != nil {
		return false
	}

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}

	manifestInfo, err := os.Stat(filepath.Join(path, ManifestFileName))
	return err == nil && !manifestInfo.IsDir()
}
