package component

import "context"

// Component is a lifecycle-managed piece of infrastructure.
type Component interface {
	// Name returns the unique registration name.
	Name() string

	// Start brings the component up.
	Start(ctx context.Context) error

	// Stop shuts the component down, flushing anything it buffered.
	Stop(ctx context.Context) error
}

// Description is a one-line self report for the startup summary.
type Description struct {
	// Name is the display name. If empty, the component's Name() is used.
	Name string
	// Details is shown next to the name, e.g. "otlp localhost:4318 rate=1".
	Details string
}

// Describable is optionally implemented by components that report how they
// are configured.
type Describable interface {
	Describe() Description
}
