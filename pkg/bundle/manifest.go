// SPDX-License-Identifier: MPL-2.0

package bundle

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// SliceDescriptor describes one slice of a bundle in the manifest and in
// the slice's own descriptor file. All paths are relative to the bundle
// root and use forward slashes, so manifests are reproducible across
// machines.
type SliceDescriptor struct {
	// Identifier is the slice directory name ("<platform>-<arch>[-<variant>]").
	Identifier string `json:"identifier" toml:"identifier"`
	// Architecture is the slice's CPU architecture.
	Architecture string `json:"architecture" toml:"architecture"`
	// Platform is the slice's target platform.
	Platform Platform `json:"platform" toml:"platform"`
	// Variant is the optional platform variant.
	Variant string `json:"variant,omitempty" toml:"variant,omitempty"`
	// LibraryPath is the bundle-root-relative path to the slice's static
	// library file.
	LibraryPath string `json:"library_path" toml:"library_path"`
	// MinOSVersion is the minimum OS version the library was built for.
	MinOSVersion string `json:"min_os_version,omitempty" toml:"min_os_version,omitempty"`
}

// Triple returns the (architecture, platform, variant) triple the
// descriptor identifies.
func (d SliceDescriptor) Triple() Triple {
	return Triple{Architecture: d.Architecture, Platform: d.Platform, Variant: d.Variant}
}

// Manifest is the top-level bundle descriptor consumed by integrating
// toolchains. The slice list is always sorted by (platform, architecture,
// variant) so identical artifact sets produce byte-identical manifests
// regardless of input order.
type Manifest struct {
	// FormatVersion is the manifest schema version.
	FormatVersion string `json:"format_version"`
	// Name is the bundle name (without the .bundle suffix).
	Name string `json:"name"`
	// Slices lists every slice in the bundle.
	Slices []SliceDescriptor `json:"slices"`
}

// Slice returns the descriptor matching the given triple, if present.
func (m Manifest) Slice(t Triple) (SliceDescriptor, bool) {
	for _, d := range m.Slices {
		if d.Triple() == t {
			return d, true
		}
	}
	return SliceDescriptor{}, false
}

// GenerateManifest produces the manifest for a bundle holding one slice
// per artifact. Output is deterministic: no timestamps, no absolute paths,
// slices ordered by (platform, architecture, variant) independent of the
// artifacts' iteration order.
func GenerateManifest(name, libraryName string, artifacts []Artifact) Manifest {
	descriptors := make([]SliceDescriptor, 0, len(artifacts))
	for _, art := range artifacts {
		descriptors = append(descriptors, SliceDescriptor{
			Identifier:   art.Target.Identifier(),
			Architecture: art.Target.Architecture,
			Platform:     art.Target.Platform,
			Variant:      art.Target.Variant,
			LibraryPath:  path.Join(art.Target.Identifier(), LibraryFileName(libraryName)),
			MinOSVersion: art.Target.MinOSVersion,
		})
	}
	sortDescriptors(descriptors)

	return Manifest{
		FormatVersion: FormatVersion,
		Name:          name,
		Slices:        descriptors,
	}
}

// sortDescriptors orders slice descriptors by (platform, architecture,
// variant).
func sortDescriptors(descriptors []SliceDescriptor) {
	sort.Slice(descriptors, func(i, j int) bool {
		a, b := descriptors[i], descriptors[j]
		if a.Platform != b.Platform {
			return a.Platform < b.Platform
		}
		if a.Architecture != b.Architecture {
			return a.Architecture < b.Architecture
		}
		return a.Variant < b.Variant
	})
}

// EncodeManifest renders the manifest as JSON. Encoding is byte-stable for
// equal manifests: two-space indent, struct field order, trailing newline.
func EncodeManifest(m Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodeManifest parses manifest JSON bytes. Schema-level validation is the
// Validator's job; this only requires well-formed JSON.
func DecodeManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

// EncodeSliceDescriptor renders a per-slice descriptor as TOML. Like the
// manifest, the output is byte-stable for equal descriptors.
func EncodeSliceDescriptor(d SliceDescriptor) ([]byte, error) {
	data, err := toml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode slice descriptor %s: %w", d.Identifier, err)
	}
	return data, nil
}

// DecodeSliceDescriptor parses a per-slice descriptor from TOML bytes.
func DecodeSliceDescriptor(data []byte) (SliceDescriptor, error) {
	var d SliceDescriptor
	if err := toml.Unmarshal(data, &d); err != nil {
		return SliceDescriptor{}, fmt.Errorf("decode slice descriptor: %w", err)
	}
	return d, nil
}
