package config

import (
	"slices"

	apperrors "github.com/kbukum/seqkit/errors"
)

// Environments accepted by BaseConfig.
var Environments = []string{"development", "staging", "production"}

// BaseConfig contains the fields every seqkit program carries.
type BaseConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`
}

// ApplyDefaults applies default values to base configuration.
func (c *BaseConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
}

// Validate validates base configuration.
func (c *BaseConfig) Validate() error {
	if c.Name == "" {
		return apperrors.InvalidConfig("name", "name is required")
	}
	if !slices.Contains(Environments, c.Environment) {
		return apperrors.InvalidConfig("environment", "environment must be one of development, staging, production (got: "+c.Environment+")")
	}
	return nil
}
