// SPDX-License-Identifier: MPL-2.0

// Package toolchain resolves build targets into compiled artifacts by
// invoking an external compiler/linker once per target.
//
// The package never inspects the libraries it collects: the toolchain
// command is configured by the caller, builds for independent targets run
// concurrently with no shared mutable state, and the only contract is that
// a successful invocation leaves exactly one static-library file at the
// agreed output path.
package toolchain

import (
	"context"
	"fmt"
	"strings"

	"archbundle-cli/pkg/bundle"
)

// Invoker runs the external toolchain for one build target. out is the
// exact path the invocation must leave the static library at; anything
// else (including a clean exit with no file) is a build failure.
type Invoker interface {
	Build(ctx context.Context, target bundle.BuildTarget, out string) error
}

// Template placeholders understood by both invokers. Each expands to the
// corresponding build target field.
const (
	placeholderArch       = "{arch}"
	placeholderPlatform   = "{platform}"
	placeholderVariant    = "{variant}"
	placeholderMinOS      = "{min_os}"
	placeholderOutput     = "{output}"
	placeholderSourceRoot = "{source_root}"
)

// expandTemplate substitutes target placeholders in a single template
// string.
func expandTemplate(s string, target bundle.BuildTarget, out, sourceRoot string) string {
	r := strings.NewReplacer(
		placeholderArch, target.Architecture,
		placeholderPlatform, string(target.Platform),
		placeholderVariant, target.Variant,
		placeholderMinOS, target.MinOSVersion,
		placeholderOutput, out,
		placeholderSourceRoot, sourceRoot,
	)
	return r.Replace(s)
}

// targetEnv returns the ARCHBUNDLE_* environment variables describing a
// build target, for toolchain wrappers that prefer env over argv.
func targetEnv(target bundle.BuildTarget, out, sourceRoot string) []string {
	return []string{
		"ARCHBUNDLE_TARGET_ARCH=" + target.Architecture,
		"ARCHBUNDLE_TARGET_PLATFORM=" + string(target.Platform),
		"ARCHBUNDLE_TARGET_VARIANT=" + target.Variant,
		"ARCHBUNDLE_MIN_OS_VERSION=" + target.MinOSVersion,
		"ARCHBUNDLE_OUTPUT=" + out,
		"ARCHBUNDLE_SOURCE_ROOT=" + sourceRoot,
	}
}

// ParseTargetSpec parses a command-line target specification of the form
//
//	<arch>:<platform>[:<variant>][@<min-os-version>]
//
// e.g. "arm64:device", "arm64:simulator@14.0", "x86_64:desktop:musl".
func ParseTargetSpec(spec string) (bundle.BuildTarget, error) {
	var target bundle.BuildTarget

	rest := spec
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		target.MinOSVersion = rest[at+1:]
		rest = rest[:at]
		if target.MinOSVersion == "" {
			return bundle.BuildTarget{}, fmt.Errorf("target %q: empty min-os version after '@'", spec)
		}
	}

	parts := strings.Split(rest, ":")
	switch len(parts) {
	case 2:
	case 3:
		target.Variant = parts[2]
		if target.Variant == "" {
			return bundle.BuildTarget{}, fmt.Errorf("target %q: empty variant", spec)
		}
	default:
		return bundle.BuildTarget{}, fmt.Errorf("target %q: expected <arch>:<platform>[:<variant>][@<min-os>]", spec)
	}

	target.Architecture = parts[0]
	target.Platform = bundle.Platform(parts[1])
	if ok, errs := target.Triple.IsValid(); !ok {
		return bundle.BuildTarget{}, fmt.Errorf("target %q: %v", spec, errs[0])
	}

	return target, nil
}

// DefaultTargets is the build matrix used when the caller specifies no
// targets: arm64 for devices and for the simulator, minimum OS 14.0.
func DefaultTargets() []bundle.BuildTarget {
	return []bundle.BuildTarget{
		{
			Triple:       bundle.Triple{Architecture: "arm64", Platform: bundle.PlatformDevice},
			MinOSVersion: "14.0",
		},
		{
			Triple:       bundle.Triple{Architecture: "arm64", Platform: bundle.PlatformSimulator},
			MinOSVersion: "14.0",
		},
	}
}
