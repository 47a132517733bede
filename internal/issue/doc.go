// SPDX-License-Identifier: MPL-2.0

// Package issue turns failures into actionable guidance: errors that
// carry remediation steps, plus a registry of rendered troubleshooting
// pages keyed by issue id that the CLI shows after a failure.
package issue
