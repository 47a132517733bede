// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"archbundle-cli/internal/config"
	"archbundle-cli/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// loadedConfig is the configuration resolved by initRootConfig. Falls
	// back to defaults when loading fails.
	loadedConfig = config.DefaultConfig()

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "archbundle",
		Short: "Multi-architecture static library bundler",
		Long: TitleStyle.Render("archbundle") + SubtitleStyle.Render(" - Multi-architecture static library bundler") + `

archbundle drives an external toolchain to build a static library once per
(architecture, platform, variant) target, then packages the results into a
single distributable bundle directory with a manifest describing every
slice. Bundles are staged and published atomically, so a destination never
holds a half-written bundle.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Configure your toolchain command (or pass --toolchain)
  2. Run: archbundle assemble --name mylib --dest dist/
  3. Ship the resulting mylib.bundle directory

` + SubtitleStyle.Render("Examples:") + `
  archbundle assemble --name peer --target arm64:device@14.0 \
      --target arm64:simulator@14.0 --dest dist/
  archbundle validate dist/peer.bundle
  archbundle config show`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/archbundle/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(newAssembleCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newConfigCommand())
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	// Set custom config file path if provided via --config flag
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Always surface config loading errors to the user
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		return
	}
	loadedConfig = cfg

	// Apply verbose from config if not set via flag
	if !verbose {
		verbose = cfg.UI.Verbose
	}
}

// newLogger builds the logger handed to the resolver and assembler. Debug
// records are suppressed unless verbose mode is on.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "archbundle",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderIssue writes the troubleshooting page for id to stderr. Pages are
// only shown on a terminal; redirected stderr gets the plain error text
// Cobra prints. Rendering failures are swallowed.
func renderIssue(id issue.Id) {
	if id == 0 {
		return
	}
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return
	}
	page := issue.Get(id)
	if page == nil {
		return
	}
	rendered, err := page.Render("dark")
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
