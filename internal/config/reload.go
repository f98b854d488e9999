package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/everloopd/internal/logging"
)

// Features is the [features] table: the variant switches of the control loop.
type Features struct {
	IdleAnimation bool `toml:"idle_animation"`
	GPIOMirroring bool `toml:"gpio_mirroring"`
}

// Reloadable is the subset of the configuration file that is applied at
// runtime when the file changes.
type Reloadable struct {
	Features Features       `toml:"features"`
	Logging  logging.Config `toml:"-"`
}

// DefaultFeatures matches the default CLI options.
func DefaultFeatures() Features {
	return Features{IdleAnimation: false, GPIOMirroring: true}
}

// LoadReloadable reads the [features] and [logging] tables from path.
// Keys absent from the file keep their defaults.
func LoadReloadable(path string) (Reloadable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Reloadable{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Reloadable{Features: DefaultFeatures()}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Reloadable{}, fmt.Errorf("failed to parse TOML config: %w", err)
	}
	cfg.Logging = LoadLoggingConfig(path)
	return cfg, nil
}

// LoadLoggingConfig loads logging configuration from a TOML config file.
// Returns default config if file doesn't exist or can't be parsed.
func LoadLoggingConfig(configPath string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: make(map[string]string),
	}

	if configPath == "" {
		return cfg
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return cfg
	}

	var rawConfig struct {
		Logging map[string]any `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &rawConfig); err != nil || rawConfig.Logging == nil {
		return cfg
	}

	// level and format are global, a nested [logging.modules] table and any
	// other string key are per-module levels
	for key, value := range rawConfig.Logging {
		switch v := value.(type) {
		case string:
			switch key {
			case "level":
				cfg.Level = v
			case "format":
				cfg.Format = v
			default:
				cfg.Modules[key] = v
			}
		case map[string]any:
			if key != "modules" {
				continue
			}
			for module, level := range v {
				if s, ok := level.(string); ok {
					cfg.Modules[module] = s
				}
			}
		}
	}

	return cfg
}
