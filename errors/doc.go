// Package errors provides the structured error type shared by seqkit packages.
// Errors carry a machine-readable code, a message, optional details and an
// underlying cause reachable through errors.Is and errors.As.
package errors
