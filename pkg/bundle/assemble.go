// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// AssembleRequest captures all inputs for one bundle assembly as an
// immutable value.
type AssembleRequest struct {
	// Name is the bundle name. The published directory is "<Name>.bundle"
	// unless Destination already carries the suffix.
	Name string
	// LibraryName names the static library inside each slice
	// ("lib<LibraryName>.a"). Defaults to Name when empty.
	LibraryName string
	// Artifacts are the compiled libraries to bundle, one per slice.
	Artifacts []Artifact
	// Destination is the path the published bundle directory should end
	// up at. Its basename must agree with Name once the suffix is
	// applied. Replaced atomically if it already exists.
	Destination string
}

// libraryName returns the effective library name for the request.
func (r AssembleRequest) libraryName() string {
	if r.LibraryName != "" {
		return r.LibraryName
	}
	return r.Name
}

// Assembler constructs bundles from artifact sets. All files are written
// into a fresh staging directory and the destination is only touched by
// the final atomic replace, so observers of the destination never see an
// intermediate state.
type Assembler struct {
	// Validator checks the staged bundle before publish. Required.
	Validator *Validator
	// Logger receives per-slice progress. Optional; nil disables logging.
	Logger *log.Logger
}

// Assemble builds and atomically publishes a bundle for the request.
//
// On any error the staging directory is removed and the destination, if it
// pre-existed, is left exactly as it was. Re-running with an identical
// artifact set produces a byte-identical bundle.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (*Bundle, error) {
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}
	if len(req.Artifacts) == 0 {
		return nil, ErrNoArtifacts
	}
	if err := checkDuplicateTriples(req.Artifacts); err != nil {
		return nil, err
	}

	dest, err := filepath.Abs(req.Destination)
	if err != nil {
		return nil, fmt.Errorf("resolve destination: %w", err)
	}
	if filepath.Ext(dest) != BundleSuffix {
		dest += BundleSuffix
	}
	// The directory name is the bundle's identity on disk: a published
	// bundle whose folder disagrees with its manifest name would fail its
	// own re-validation, so refuse to create one.
	if got, want := filepath.Base(dest), req.Name+BundleSuffix; got != want {
		return nil, fmt.Errorf("destination %q does not match bundle name %q: the published directory must be named %q", got, req.Name, want)
	}

	lock, err := lockDestination(dest)
	if err != nil {
		return nil, err
	}
	defer lock.release()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, fmt.Errorf("create destination parent: %w", err)
	}

	// Stage in a sibling of the destination so the final publish is a
	// same-filesystem rename, never a copy.
	staging, err := os.MkdirTemp(filepath.Dir(dest), ".archbundle-staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	published := false
	defer func() {
		if !published {
			os.RemoveAll(staging)
		}
	}()

	manifest := GenerateManifest(req.Name, req.libraryName(), req.Artifacts)

	byTriple := make(map[Triple]Artifact, len(req.Artifacts))
	for _, art := range req.Artifacts {
		byTriple[art.Target.Triple] = art
	}

	for _, desc := range manifest.Slices {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembly canceled: %w", err)
		}
		art := byTriple[desc.Triple()]
		if err := a.stageSlice(staging, desc, art); err != nil {
			return nil, err
		}
	}

	manifestBytes, err := EncodeManifest(manifest)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(staging, ManifestFileName), manifestBytes, 0o644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := a.Validator.Validate(manifest, staging); err != nil {
		return nil, err
	}

	if err := atomicReplace(staging, dest); err != nil {
		return nil, err
	}
	published = true

	if a.Logger != nil {
		a.Logger.Info("bundle published", "path", dest, "slices", len(manifest.Slices))
	}

	return &Bundle{Path: dest, Name: req.Name, Manifest: manifest}, nil
}

// checkDuplicateTriples rejects artifact sets where two artifacts resolve
// to the same slice.
func checkDuplicateTriples(artifacts []Artifact) error {
	seen := make(map[Triple]bool, len(artifacts))
	for _, art := range artifacts {
		t := art.Target.Triple
		if seen[t] {
			return &DuplicateSliceError{Triple: t}
		}
		seen[t] = true
	}
	return nil
}

// stageSlice creates one slice directory under the staging root: the
// copied library (verified against the artifact's fingerprint) and the
// slice descriptor.
func (a *Assembler) stageSlice(staging string, desc SliceDescriptor, art Artifact) error {
	sliceDir := filepath.Join(staging, desc.Identifier)
	if err := os.Mkdir(sliceDir, 0o755); err != nil {
		return fmt.Errorf("create slice directory %s: %w", desc.Identifier, err)
	}

	libPath := filepath.Join(staging, filepath.FromSlash(desc.LibraryPath))
	if err := copyFile(art.Path, libPath); err != nil {
		return fmt.Errorf("copy library into slice %s: %w", desc.Identifier, err)
	}

	// Re-read the copy and compare fingerprints. A mismatch means the
	// bytes on disk are not what the toolchain produced, so abort the whole
	// assembly rather than publish a corrupt slice.
	got, err := FingerprintFile(libPath)
	if err != nil {
		return err
	}
	if got != art.Fingerprint {
		return &CopyIntegrityError{Identifier: desc.Identifier, Want: art.Fingerprint, Got: got}
	}

	descBytes, err := EncodeSliceDescriptor(desc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(sliceDir, SliceDescriptorFileName), descBytes, 0o644); err != nil {
		return fmt.Errorf("write slice descriptor %s: %w", desc.Identifier, err)
	}

	if a.Logger != nil {
		a.Logger.Debug("slice staged", "slice", desc.Identifier, "fingerprint", art.Fingerprint.Short())
	}
	return nil
}

// copyFile copies src to dst, fsyncing the destination so the bytes the
// fingerprint check reads back are the bytes that will survive a crash.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

// atomicReplace publishes the staging directory at dest with rename
// operations only. A fresh destination is a single rename. An existing
// destination is moved aside first and removed only after the swap, so a
// crash at any point leaves either the fully-old or fully-new bundle,
// never a mix.
func atomicReplace(staging, dest string) error {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		if err := os.Rename(staging, dest); err != nil {
			return fmt.Errorf("publish bundle: %w", err)
		}
		return nil
	}

	old := staging + ".old"
	if err := os.Rename(dest, old); err != nil {
		return fmt.Errorf("move previous bundle aside: %w", err)
	}
	if err := os.Rename(staging, dest); err != nil {
		// Best effort: put the previous bundle back so the destination
		// is not left empty.
		if restoreErr := os.Rename(old, dest); restoreErr != nil {
			return fmt.Errorf("publish bundle: %w (and restoring previous bundle failed: %v)", err, restoreErr)
		}
		return fmt.Errorf("publish bundle: %w", err)
	}
	if err := os.RemoveAll(old); err != nil {
		return fmt.Errorf("remove previous bundle: %w", err)
	}
	return nil
}
