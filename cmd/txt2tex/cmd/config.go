package cmd

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional TOML configuration. Every field has a working
// default, so a missing config file is not an error.
type Config struct {
	Mode    string `toml:"mode"`    // default output mode: fuzz or plain
	Checker string `toml:"checker"` // external type checker binary
}

func (c *Config) applyDefaults() {
	if c.Checker == "" {
		c.Checker = "fuzz"
	}
}

// loadConfig reads the file named by --config, or ./txt2tex.toml when the
// flag is unset. Only an explicitly named file is required to exist.
func loadConfig() (*Config, error) {
	path := cfgFile
	required := path != ""
	if path == "" {
		path = "txt2tex.toml"
	}
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		if required {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		cfg.applyDefaults()
		return &cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}
