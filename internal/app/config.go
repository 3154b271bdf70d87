package app

import "errors"

// Config holds all the settings an App instance needs to start. Values come
// from CLI flags with environment-variable defaults.
type Config struct {
	// ConfigPath points at the host configuration, a .hcl file or a
	// directory of them.
	ConfigPath string `env:"MODGRID_CONFIG"`

	// ModulesPath is the directory holding per-module manifest files. May
	// be empty; manifests are then synthesized.
	ModulesPath string `env:"MODGRID_MODULES_PATH"`

	// PluginsDir overrides the plugin directory from the config snapshot
	// when non-empty.
	PluginsDir string `env:"MODGRID_PLUGINS_DIR"`

	LogFormat string `env:"MODGRID_LOG_FORMAT"`
	LogLevel  string `env:"MODGRID_LOG_LEVEL"`
}

// NewConfig validates a Config.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
