// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"os"
)

// EnvConfigFile is the environment variable naming an explicit config file.
// The --config flag takes precedence over it.
const EnvConfigFile = "ARCHBUNDLE_CONFIG"

// configFilePathOverride is set by the --config flag and takes precedence
// over every other config source.
var configFilePathOverride string

// SetConfigFilePathOverride forces loading from a specific config file.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// Load reads configuration honoring the flag override, then the
// ARCHBUNDLE_CONFIG environment variable, then the platform config
// directory.
func Load() (*Config, error) {
	path := configFilePathOverride
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigFilePath: path})
	return cfg, err
}

// configDirOverride allows tests to override the config directory.
// This is necessary because os.UserHomeDir() doesn't reliably respect
// the HOME environment variable on all platforms (e.g., macOS in CI).
var configDirOverride string

// Reset clears test overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	configFilePathOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
