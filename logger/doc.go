// Package logger provides structured logging for seqkit programs using
// zerolog.
//
// It supports JSON and console output, level configuration and
// component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//
// # Usage
//
//	log := logger.Get("demo")
//	log.Info("traversal finished", logger.Fields(logger.FieldElements, 4))
package logger
