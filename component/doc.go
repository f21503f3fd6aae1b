// Package component runs the long-lived pieces of a seqkit program, such as
// telemetry providers, under one start/stop lifecycle.
//
// Components start in registration order and stop in reverse order, so
// register dependencies first.
package component
