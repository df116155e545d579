package cache

import (
	"fmt"
	"strings"

	"github.com/jonwraymond/credcache/keyschema"
)

// Config configures a Manager.
type Config struct {
	// EnvironmentAliases lists interchangeable environment hostnames.
	// Lookups only match entries whose environment is listed here.
	EnvironmentAliases []string
}

// DefaultConfig returns a config with the public cloud alias table.
func DefaultConfig() Config {
	return Config{
		EnvironmentAliases: keyschema.DefaultEnvironmentAliases().Values(),
	}
}

// Validate validates the configuration.
func (c Config) Validate() error {
	if len(c.EnvironmentAliases) == 0 {
		return fmt.Errorf("%w: at least one environment alias is required", ErrInvalidConfig)
	}
	for i, a := range c.EnvironmentAliases {
		if strings.TrimSpace(a) == "" {
			return fmt.Errorf("%w: environment alias %d is empty", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Aliases returns the alias table described by the config.
func (c Config) Aliases() keyschema.EnvironmentAliases {
	return keyschema.NewEnvironmentAliases(c.EnvironmentAliases...)
}
