// Package validation checks configuration values, either through struct
// tags evaluated by go-playground/validator or through a chainable
// programmatic Validator. Failures are reported as an errors.AppError with
// code INVALID_CONFIG whose details list the offending fields.
//
//	type DrawerConfig struct {
//	    Format string `mapstructure:"format" validate:"oneof=dot svg"`
//	}
//	err := validation.Validate(cfg)
package validation
