package registry

import (
	"context"
	"time"

	"modeld/pkg/types"
)

// InterfaceAdapter probes and validates traffic for one model mode.
type InterfaceAdapter interface {
	Mode() types.Mode
	// Health probes both liveness and functionality, returning within timeout.
	Health(ctx context.Context, port int, startedAt time.Time, timeout time.Duration) (ok bool, reason string)
	// Endpoints returns the set of path prefixes this mode serves.
	Endpoints() []string
	// Validate checks a request path is compatible with this mode.
	Validate(path, modelName string) (ok bool, reason string)
}

var interfaceAdapters = map[types.Mode]InterfaceAdapter{}

// RegisterInterfaceMode adds an interface adapter to the compile-time table.
// Call from an init() in the file that implements the mode.
func RegisterInterfaceMode(a InterfaceAdapter) {
	mode := a.Mode()
	if _, exists := interfaceAdapters[mode]; exists {
		panic("registry: interface mode already registered: " + string(mode))
	}
	interfaceAdapters[mode] = a
}

// InterfaceFor looks up the registered adapter for a mode.
func InterfaceFor(mode types.Mode) (InterfaceAdapter, bool) {
	a, ok := interfaceAdapters[mode]
	return a, ok
}

// KnownModes lists modes registered at compile time.
func KnownModes() []types.Mode {
	out := make([]types.Mode, 0, len(interfaceAdapters))
	for m := range interfaceAdapters {
		out = append(out, m)
	}
	return out
}
