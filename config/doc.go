// Package config loads program configuration from YAML files, .env files
// and environment variables using Viper.
//
// # Usage
//
//	var cfg app.Config
//	err := config.LoadConfig("seqdemo", &cfg, config.WithEnvPrefix("SEQDEMO"))
//
// Lookup order for the YAML file is ./cmd/<name>/config.yml,
// ./config/config.yml and ./config.yml. Environment variables override file
// values: with prefix SEQDEMO, SEQDEMO_LOGGING_LEVEL sets logging.level.
package config
