// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"archbundle-cli/internal/issue"
	"archbundle-cli/pkg/bundle"
	"archbundle-cli/pkg/types"

	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <bundle-path>",
		Short: "Validate a published bundle",
		Long: `Validate a published bundle directory.

The manifest is checked against the bundle schema, every slice's triple and
architecture are verified, and each library file is confirmed to exist
inside the bundle. The architecture allow-list comes from the bundle
section of the configuration.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0])
		},
	}
}

func runValidate(path string) error {
	validator := &bundle.Validator{AllowedArchitectures: loadedConfig.Bundle.AllowedArchitectures}

	b, err := validator.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			renderIssue(issue.BundleNotFoundId)
			return &ExitError{Code: types.ExitUsage, Err: err}
		}
		var vErr *bundle.ValidationError
		if errors.As(err, &vErr) {
			fmt.Fprintf(os.Stderr, "%s %s\n", ErrorStyle.Render("Invalid"), path)
			for _, iss := range vErr.Issues {
				fmt.Fprintf(os.Stderr, "  %s\n", iss)
			}
		}
		exitErr, _ := classifyError(err)
		exitErr.Code = types.ExitValidationFailed
		renderIssue(issue.BundleValidationFailedId)
		return exitErr
	}

	fmt.Printf("%s %s\n", SuccessStyle.Render("Valid"), b.Path)
	fmt.Printf("%s: %s\n", CmdStyle.Render("name"), b.Name)
	fmt.Printf("%s: %s\n", CmdStyle.Render("format"), b.Manifest.FormatVersion)
	fmt.Printf("%s:\n", CmdStyle.Render("slices"))
	for _, slice := range b.Manifest.Slices {
		line := fmt.Sprintf("  %-28s %s", slice.Identifier, slice.LibraryPath)
		if slice.MinOSVersion != "" {
			line += SubtitleStyle.Render(fmt.Sprintf("  (min OS %s)", slice.MinOSVersion))
		}
		if verbose {
			fp, fpErr := bundle.FingerprintFile(filepath.Join(b.Path, filepath.FromSlash(slice.LibraryPath)))
			if fpErr == nil {
				line += VerboseStyle.Render("  " + fp.Short())
			}
		}
		fmt.Println(line)
	}
	return nil
}
