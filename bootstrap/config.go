package bootstrap

import (
	"github.com/kbukum/seqkit/config"
)

// Config is the constraint for application configuration types. A struct
// embedding config.BaseConfig gets GetBaseConfig by adding
//
//	func (c *MyConfig) GetBaseConfig() *config.BaseConfig { return &c.BaseConfig }
type Config interface {
	GetBaseConfig() *config.BaseConfig
	ApplyDefaults()
	Validate() error
}
