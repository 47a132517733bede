// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"errors"
	"reflect"
	"testing"
)

func TestDetectSandboxFrom(t *testing.T) {
	t.Parallel()

	noEnv := func(string) string { return "" }
	noFile := func(string) error { return errors.New("not found") }
	flatpakInfo := func(path string) error {
		if path == "/.flatpak-info" {
			return nil
		}
		return errors.New("not found")
	}
	snapEnv := func(key string) string {
		if key == "SNAP_NAME" {
			return "archbundle"
		}
		return ""
	}

	testCases := []struct {
		name      string
		lookupEnv func(string) string
		statFile  func(string) error
		want      SandboxType
	}{
		{"no sandbox", noEnv, noFile, SandboxNone},
		{"flatpak", noEnv, flatpakInfo, SandboxFlatpak},
		{"snap", snapEnv, noFile, SandboxSnap},
		{"flatpak wins over snap", snapEnv, flatpakInfo, SandboxFlatpak},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := detectSandboxFrom(tc.lookupEnv, tc.statFile); got != tc.want {
				t.Errorf("detectSandboxFrom() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSpawnCommandFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		sandbox SandboxType
		cmd     string
		args    []string
	}{
		{SandboxNone, "", nil},
		{SandboxFlatpak, "flatpak-spawn", []string{"--host"}},
		{SandboxSnap, "snap", []string{"run", "--shell"}},
		{SandboxType("unknown"), "", nil},
	}

	for _, tc := range testCases {
		if got := SpawnCommandFor(tc.sandbox); got != tc.cmd {
			t.Errorf("SpawnCommandFor(%q) = %q, want %q", tc.sandbox, got, tc.cmd)
		}
		if got := SpawnArgsFor(tc.sandbox); !reflect.DeepEqual(got, tc.args) {
			t.Errorf("SpawnArgsFor(%q) = %v, want %v", tc.sandbox, got, tc.args)
		}
	}
}

func TestDetectSandboxIsStable(t *testing.T) {
	first := DetectSandbox()
	second := DetectSandbox()
	if first != second {
		t.Errorf("DetectSandbox() not stable: %q then %q", first, second)
	}
	if IsInSandbox() != (first != SandboxNone) {
		t.Error("IsInSandbox() disagrees with DetectSandbox()")
	}
}
