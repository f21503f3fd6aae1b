package app

import (
	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/internal/demo"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
	"github.com/kbukum/seqkit/validation"
)

// Config is the seqdemo configuration.
type Config struct {
	config.BaseConfig `yaml:",inline" mapstructure:",squash"`

	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Drawer        DrawerConfig         `yaml:"drawer" mapstructure:"drawer"`
	// Demos selects and orders the demos to run. Empty runs all of them.
	Demos []string `yaml:"demos" mapstructure:"demos"`
}

// DrawerConfig controls writing a DOT file per observed query.
type DrawerConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	RankDir   string `yaml:"rank_dir" mapstructure:"rank_dir" validate:"omitempty,oneof=LR TB RL BT"`
}

// GetBaseConfig exposes the embedded base section.
func (c *Config) GetBaseConfig() *config.BaseConfig { return &c.BaseConfig }

// ApplyDefaults fills unset values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "seqdemo"
	}
	c.BaseConfig.ApplyDefaults()
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
	if c.Drawer.OutputDir == "" {
		c.Drawer.OutputDir = "plans"
	}
	if c.Drawer.RankDir == "" {
		c.Drawer.RankDir = "LR"
	}
}

// Validate checks every section. Demo names must exist in the builtin
// registry and an enabled drawer needs an output directory.
func (c *Config) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New().EachOneOf("demos", c.Demos, demo.Builtin().Names())
	if c.Drawer.Enabled {
		v.Required("drawer.output_dir", c.Drawer.OutputDir)
	}
	return v.Validate()
}
