// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

// SandboxType identifies the application sandbox the process runs in, if any.
type SandboxType string

const (
	SandboxNone    SandboxType = ""
	SandboxFlatpak SandboxType = "flatpak"
	SandboxSnap    SandboxType = "snap"
)

// The sandbox cannot change during the process lifetime, so detection runs
// once. detectSandboxFrom must not panic: sync.OnceValue re-panics on every
// subsequent call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// DetectSandbox reports the sandbox the current process runs in. Flatpak is
// recognized by /.flatpak-info, Snap by the SNAP_NAME environment variable.
func DetectSandbox() SandboxType {
	return detectOnce()
}

// IsInSandbox reports whether the current process runs inside a sandbox.
func IsInSandbox() bool {
	return DetectSandbox() != SandboxNone
}

// GetSpawnCommand returns the command that spawns processes on the host
// system, or "" when not sandboxed.
func GetSpawnCommand() string {
	return SpawnCommandFor(DetectSandbox())
}

// GetSpawnArgs returns the arguments to prepend before the actual command
// when spawning on the host, or nil when not sandboxed.
func GetSpawnArgs() []string {
	return SpawnArgsFor(DetectSandbox())
}

// SpawnCommandFor returns the host spawn command for a sandbox type.
func SpawnCommandFor(st SandboxType) string {
	switch st {
	case SandboxFlatpak:
		return "flatpak-spawn"
	case SandboxSnap:
		return "snap"
	default:
		return ""
	}
}

// SpawnArgsFor returns the host spawn arguments for a sandbox type.
func SpawnArgsFor(st SandboxType) []string {
	switch st {
	case SandboxFlatpak:
		return []string{"--host"}
	case SandboxSnap:
		return []string{"run", "--shell"}
	default:
		return nil
	}
}

// detectSandboxFrom takes the env and stat lookups as parameters so tests
// can drive it without touching process state. Flatpak wins when both
// indicators are present.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
