// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for archbundle.
//
// This package implements the Cobra command hierarchy for the archbundle
// CLI: the root command, bundle assembly and validation subcommands, and
// configuration management.
package cmd
