// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"archbundle-cli/internal/config"
	"archbundle-cli/internal/issue"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `archbundle config` command tree.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage archbundle configuration",
		Long: `Manage archbundle configuration.

Configuration is stored in:
  - Linux: ~/.config/archbundle/config.cue
  - macOS: ~/Library/Application Support/archbundle/config.cue
  - Windows: %APPDATA%\archbundle\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return initConfig(force)
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing config file with the defaults")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			cueContent := config.GenerateCUE(cfg)
			fmt.Print(cueContent)
			return nil
		},
	})

	return cfgCmd
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("toolchain.mode"), valueStyle.Render(string(cfg.Toolchain.Mode)))
	if len(cfg.Toolchain.Command) > 0 {
		fmt.Printf("%s: %s\n", keyStyle.Render("toolchain.command"), valueStyle.Render(strings.Join(cfg.Toolchain.Command, " ")))
	}
	if cfg.Toolchain.Script != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("toolchain.script"), valueStyle.Render(cfg.Toolchain.Script))
	}
	if cfg.Toolchain.SourceRoot != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("toolchain.source_root"), valueStyle.Render(cfg.Toolchain.SourceRoot))
	}
	fmt.Printf("%s: %s\n", keyStyle.Render("toolchain.concurrency"), valueStyle.Render(fmt.Sprintf("%d", cfg.Toolchain.Concurrency)))
	if cfg.Toolchain.Timeout != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("toolchain.timeout"), valueStyle.Render(cfg.Toolchain.Timeout))
	}

	fmt.Println()
	fmt.Printf("%s: %s\n", keyStyle.Render("bundle.allowed_architectures"), valueStyle.Render(strings.Join(cfg.Bundle.AllowedArchitectures, ", ")))
	if cfg.Bundle.LibraryName != "" {
		fmt.Printf("%s: %s\n", keyStyle.Render("bundle.library_name"), valueStyle.Render(cfg.Bundle.LibraryName))
	}

	fmt.Println()
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig(force bool) error {
	var err error
	if force {
		err = config.Save(config.DefaultConfig())
	} else {
		err = config.CreateDefaultConfig()
	}
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Printf("%s %s\n", SuccessStyle.Render("Created"), cfgPath)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
