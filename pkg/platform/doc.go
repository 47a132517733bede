// SPDX-License-Identifier: MPL-2.0

// Package platform handles host-specific concerns: OS identification,
// Flatpak/Snap sandbox detection for reaching host toolchains, and
// Windows reserved filenames that bundle names must avoid.
package platform
