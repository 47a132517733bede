// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions selects where configuration is loaded from. The zero value
// means the standard lookup: platform config dir, then a local config.cue.
type LoadOptions struct {
	// ConfigFilePath forces a specific config file. The file must exist.
	ConfigFilePath string
	// ConfigDirPath overrides the config directory lookup.
	ConfigDirPath string
}

// Provider loads configuration from explicit options. The CLI uses the
// package-level Load; Provider exists so library consumers can inject a
// fake in tests.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider returns the file-backed Provider.
func NewProvider() Provider {
	return &fileProvider{}
}

func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadWithPath reads configuration like Provider.Load but also reports
// which file it came from. The path is empty when only defaults applied.
func LoadWithPath(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	return loadWithOptions(ctx, opts)
}
