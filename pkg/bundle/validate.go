// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"archbundle-cli/pkg/cueutil"
)

//go:embed manifest_schema.cue
var manifestSchema []byte

// Validator enforces bundle-level invariants before publish and when
// inspecting already-published bundles.
type Validator struct {
	// AllowedArchitectures is the set of architectures slices may declare.
	// An empty allow-list rejects every slice, so a missing configuration
	// fails loudly instead of silently accepting anything.
	AllowedArchitectures []string
}

// Validate checks the manifest against the bundle rooted at root:
//
//	(a) every slice's library path resolves to an existing regular file
//	(b) no two slices share an (architecture, platform, variant) triple
//	(c) the slice list is non-empty
//	(d) every declared architecture is in the allow-list
//
// All problems are collected into a single *ValidationError rather than
// stopping at the first.
func (v *Validator) Validate(m Manifest, root string) error {
	verr := &ValidationError{}

	if m.FormatVersion != FormatVersion {
		verr.add("unsupported format_version %q (this tool supports %q)", m.FormatVersion, FormatVersion)
	}
	if err := ValidateName(m.Name); err != nil {
		verr.add("%v", err)
	}
	if len(m.Slices) == 0 {
		verr.add("manifest lists no slices; a bundle must contain at least one")
	}

	seen := make(map[Triple]bool, len(m.Slices))
	for i, d := range m.Slices {
		prefix := fmt.Sprintf("slices[%d] (%s)", i, d.Identifier)

		triple := d.Triple()
		if ok, errs := triple.IsValid(); !ok {
			for _, err := range errs {
				verr.add("%s: %v", prefix, err)
			}
		}
		if seen[triple] {
			verr.add("%s: duplicate triple %s", prefix, triple)
		}
		seen[triple] = true

		if d.Identifier != triple.Identifier() {
			verr.add("%s: identifier does not match triple (want %q)", prefix, triple.Identifier())
		}

		if d.Architecture != "" && !slices.Contains(v.AllowedArchitectures, d.Architecture) {
			verr.add("%s: architecture %q is not in the allowed set %v", prefix, d.Architecture, v.AllowedArchitectures)
		}

		v.checkLibraryPath(verr, prefix, root, d)
	}

	return verr.errOrNil()
}

// checkLibraryPath verifies the descriptor's library path is relative,
// stays inside the bundle, and resolves to a regular file.
func (v *Validator) checkLibraryPath(verr *ValidationError, prefix, root string, d SliceDescriptor) {
	if d.LibraryPath == "" {
		verr.add("%s: library_path is empty", prefix)
		return
	}

	native := filepath.FromSlash(d.LibraryPath)
	if filepath.IsAbs(native) {
		verr.add("%s: library_path %q must be relative to the bundle root", prefix, d.LibraryPath)
		return
	}

	full := filepath.Join(root, native)
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		verr.add("%s: library_path %q escapes the bundle root", prefix, d.LibraryPath)
		return
	}

	info, err := os.Stat(full)
	switch {
	case os.IsNotExist(err):
		verr.add("%s: library file %q does not exist", prefix, d.LibraryPath)
	case err != nil:
		verr.add("%s: cannot access library file %q: %v", prefix, d.LibraryPath, err)
	case info.IsDir():
		verr.add("%s: library path %q is a directory, not a file", prefix, d.LibraryPath)
	}
}

// Open reads, schema-checks, and structurally validates a published bundle
// directory. It backs the "validate" command and is what integrating
// tooling should use before trusting a bundle.
func (v *Validator) Open(bundlePath string) (*Bundle, error) {
	absPath, err := filepath.Abs(bundlePath)
	if err != nil {
		return nil, fmt.Errorf("resolve bundle path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat bundle: %w", err)
	}
	if !info.IsDir() {
		return nil, &ValidationError{Issues: []string{fmt.Sprintf("%s is not a directory", absPath)}}
	}

	name, err := ParseBundleName(filepath.Base(absPath))
	if err != nil {
		return nil, &ValidationError{Issues: []string{err.Error()}}
	}

	manifestPath := filepath.Join(absPath, ManifestFileName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ValidationError{Issues: []string{fmt.Sprintf("missing required %s", ManifestFileName)}}
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	// JSON is valid CUE, so the manifest bytes unify directly with the
	// embedded #Manifest schema.
	result, err := cueutil.ParseAndDecode[Manifest](manifestSchema, data, "#Manifest",
		cueutil.WithFilename(manifestPath))
	if err != nil {
		return nil, &ValidationError{Issues: []string{err.Error()}}
	}
	m := *result.Value

	if m.Name != name {
		return nil, &ValidationError{Issues: []string{
			fmt.Sprintf("manifest name %q does not match bundle directory name %q", m.Name, name),
		}}
	}

	if err := v.Validate(m, absPath); err != nil {
		return nil, err
	}

	return &Bundle{Path: absPath, Name: name, Manifest: m}, nil
}

// ValidateBundleDir is Open without the decoded result, for callers that
// only need the verdict.
func (v *Validator) ValidateBundleDir(bundlePath string) error {
	_, err := v.Open(bundlePath)
	return err
}
