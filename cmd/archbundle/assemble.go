// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"archbundle-cli/internal/config"
	"archbundle-cli/internal/issue"
	"archbundle-cli/internal/toolchain"
	"archbundle-cli/pkg/bundle"
	"archbundle-cli/pkg/types"

	"github.com/spf13/cobra"
)

// assembleOptions captures the assemble command's flag values.
type assembleOptions struct {
	name        string
	dest        string
	libName     string
	targets     []string
	script      string
	sourceRoot  string
	concurrency int
	timeout     string

	// set tracks which flags were given explicitly, so zero values don't
	// clobber config-file settings.
	set func(name string) bool
}

func newAssembleCommand() *cobra.Command {
	opts := &assembleOptions{}

	assembleCmd := &cobra.Command{
		Use:   "assemble",
		Short: "Build all targets and publish them as a bundle",
		Long: `Build the static library once per target and package the results into a
single bundle directory.

Each --target takes the form <arch>:<platform>[:<variant>][@<min-os>], e.g.
"arm64:device@14.0" or "x86_64:desktop:musl". When no --target is given the
default matrix is used: arm64 for devices and the simulator at minimum OS
14.0.

The bundle is assembled in a hidden staging directory next to the
destination and published with an atomic rename: the destination either
holds the previous bundle or the complete new one, never a mix.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.set = cmd.Flags().Changed
			return runAssemble(cmd.Context(), opts)
		},
	}

	assembleCmd.Flags().StringVarP(&opts.name, "name", "n", "", "bundle name (required)")
	assembleCmd.Flags().StringVarP(&opts.dest, "dest", "d", ".", "destination directory (or full path ending in .bundle)")
	assembleCmd.Flags().StringVar(&opts.libName, "lib-name", "", "library file base name (default: bundle name)")
	assembleCmd.Flags().StringArrayVarP(&opts.targets, "target", "t", nil, "build target as <arch>:<platform>[:<variant>][@<min-os>] (repeatable)")
	assembleCmd.Flags().StringVar(&opts.script, "toolchain", "", "toolchain shell script (overrides configured toolchain)")
	assembleCmd.Flags().StringVar(&opts.sourceRoot, "source-root", "", "working directory for toolchain invocations")
	assembleCmd.Flags().IntVar(&opts.concurrency, "concurrency", 0, "parallel toolchain invocations (0 = one per CPU)")
	assembleCmd.Flags().StringVar(&opts.timeout, "timeout", "", "per-target build timeout as a Go duration (e.g. 10m)")
	_ = assembleCmd.MarkFlagRequired("name")

	return assembleCmd
}

func runAssemble(ctx context.Context, opts *assembleOptions) error {
	if err := bundle.ValidateName(opts.name); err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	targets, err := resolveTargets(opts.targets)
	if err != nil {
		renderIssue(issue.InvalidTargetSpecId)
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	tc := toolchainSettings(opts)
	if !tc.IsConfigured() {
		renderIssue(issue.ToolchainNotFoundId)
		return &ExitError{Code: types.ExitUsage, Err: fmt.Errorf("no toolchain command or script configured")}
	}
	timeout, err := tc.ParsedTimeout()
	if err != nil {
		return &ExitError{Code: types.ExitUsage, Err: err}
	}

	logger := newLogger()

	var invoker toolchain.Invoker
	switch tc.Mode {
	case config.InvokerModeShell:
		invoker = &toolchain.ShellInvoker{Script: tc.Script, SourceRoot: tc.SourceRoot, Logger: logger}
	default:
		invoker = &toolchain.ExecInvoker{Command: tc.Command, SourceRoot: tc.SourceRoot, Logger: logger}
	}

	libName := opts.libName
	if libName == "" {
		libName = loadedConfig.Bundle.LibraryName
	}
	if libName == "" {
		libName = opts.name
	}

	resolver := &toolchain.Resolver{
		Invoker:     invoker,
		LibraryName: libName,
		Concurrency: tc.Concurrency,
		Timeout:     timeout,
		Logger:      logger,
	}

	resolution, err := resolver.Resolve(ctx, targets)
	if err != nil {
		exitErr, issueId := classifyError(err)
		renderIssue(issueId)
		return exitErr
	}
	defer resolution.Discard()

	assembler := &bundle.Assembler{
		Validator: &bundle.Validator{AllowedArchitectures: loadedConfig.Bundle.AllowedArchitectures},
		Logger:    logger,
	}

	b, err := assembler.Assemble(ctx, bundle.AssembleRequest{
		Name:        opts.name,
		LibraryName: libName,
		Artifacts:   resolution.Artifacts,
		Destination: destinationPath(opts.dest, opts.name),
	})
	if err != nil {
		exitErr, issueId := classifyError(err)
		renderIssue(issueId)
		return exitErr
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("Published"), b.Path)
	for _, slice := range b.Manifest.Slices {
		fmt.Printf("  %s %s\n", CmdStyle.Render(slice.Identifier), SubtitleStyle.Render(slice.LibraryPath))
	}
	return nil
}

// resolveTargets parses the --target flags, falling back to the default
// build matrix when none are given.
func resolveTargets(specs []string) ([]bundle.BuildTarget, error) {
	if len(specs) == 0 {
		return toolchain.DefaultTargets(), nil
	}
	targets := make([]bundle.BuildTarget, 0, len(specs))
	for _, spec := range specs {
		target, err := toolchain.ParseTargetSpec(spec)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
	}
	return targets, nil
}

// toolchainSettings layers the assemble flags over the configured toolchain.
// The --toolchain flag switches to shell mode with the given script.
func toolchainSettings(opts *assembleOptions) config.ToolchainConfig {
	tc := loadedConfig.Toolchain
	if opts.script != "" {
		tc.Mode = config.InvokerModeShell
		tc.Script = opts.script
	}
	if opts.set("source-root") {
		tc.SourceRoot = opts.sourceRoot
	}
	if opts.set("concurrency") {
		tc.Concurrency = opts.concurrency
	}
	if opts.set("timeout") {
		tc.Timeout = opts.timeout
	}
	return tc
}

// destinationPath resolves the --dest flag: a path ending in ".bundle" is
// used verbatim, anything else is treated as the directory to publish into.
func destinationPath(dest, name string) string {
	if strings.HasSuffix(dest, bundle.BundleSuffix) {
		return dest
	}
	return filepath.Join(dest, name+bundle.BundleSuffix)
}
