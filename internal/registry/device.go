// Package registry holds the compile-time Device and Interface Adapter
// tables. Adapters self-register from an init() in their own file, replacing
// the runtime directory-scan plugin loader of the original system: enabling a
// new device or interface means adding a file and importing it for side
// effects, not dropping a script into a watched directory.
package registry

import (
	"sync"
	"time"

	"modeld/pkg/types"
)

// DeviceAdapter reports the online state and memory snapshot of one device.
type DeviceAdapter interface {
	Name() string
	Online() bool
	Snapshot() types.DeviceSnapshot
}

// DeviceFactory builds a DeviceAdapter from its declared config block.
type DeviceFactory func(name string, cfg map[string]any) (DeviceAdapter, error)

// ReservationSink is implemented by device adapters that track reserved
// memory internally rather than measuring it (poolDevice). The lifecycle
// controller pushes its Routing-state reservation total into any adapter
// implementing this, keyed by device name.
type ReservationSink interface {
	SetReserved(mb int)
}

var (
	deviceMu       sync.RWMutex
	deviceFactories = map[string]DeviceFactory{}
)

// RegisterDeviceKind adds a device adapter kind to the compile-time table.
// Call from an init() in the file that implements the kind.
func RegisterDeviceKind(kind string, factory DeviceFactory) {
	deviceMu.Lock()
	defer deviceMu.Unlock()
	if _, exists := deviceFactories[kind]; exists {
		panic("registry: device kind already registered: " + kind)
	}
	deviceFactories[kind] = factory
}

// NewDevice constructs a device adapter of the given kind.
func NewDevice(kind, name string, cfg map[string]any) (DeviceAdapter, bool, error) {
	deviceMu.RLock()
	factory, ok := deviceFactories[kind]
	deviceMu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	a, err := factory(name, cfg)
	return a, true, err
}

// KnownDeviceKinds lists the device kinds registered at compile time.
func KnownDeviceKinds() []string {
	deviceMu.RLock()
	defer deviceMu.RUnlock()
	out := make([]string, 0, len(deviceFactories))
	for k := range deviceFactories {
		out = append(out, k)
	}
	return out
}

// DeviceRegistry caches adapter snapshots behind a TTL so admission checks
// under load do not re-poll hardware/OS state on every call.
type DeviceRegistry struct {
	ttl      time.Duration
	mu       sync.Mutex
	adapters map[string]DeviceAdapter
	cache    map[string]cachedSnapshot
}

type cachedSnapshot struct {
	at       time.Time
	online   bool
	snapshot types.DeviceSnapshot
}

// NewDeviceRegistry builds a registry with the given cache TTL (default 1s if <= 0).
func NewDeviceRegistry(ttl time.Duration) *DeviceRegistry {
	if ttl <= 0 {
		ttl = time.Second
	}
	return &DeviceRegistry{
		ttl:      ttl,
		adapters: make(map[string]DeviceAdapter),
		cache:    make(map[string]cachedSnapshot),
	}
}

// Add registers a constructed adapter instance under its own name.
func (r *DeviceRegistry) Add(a DeviceAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
}

// Has reports whether a device with this name is registered.
func (r *DeviceRegistry) Has(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.adapters[name]
	return ok
}

// Names lists all registered device names.
func (r *DeviceRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.adapters))
	for n := range r.adapters {
		out = append(out, n)
	}
	return out
}

// PushReservation updates the reserved-memory ledger on a device adapter
// that tracks it internally (poolDevice). It is a no-op for adapters that
// measure their own free memory directly (host, nvidia-smi).
func (r *DeviceRegistry) PushReservation(name string, mb int) {
	r.mu.Lock()
	a, ok := r.adapters[name]
	r.mu.Unlock()
	if !ok {
		return
	}
	if sink, ok := a.(ReservationSink); ok {
		sink.SetReserved(mb)
	}
}

// Online reports whether a device is currently online. A failing or unknown
// adapter reports offline rather than propagating an error.
func (r *DeviceRegistry) Online(name string) bool {
	online, _ := r.get(name)
	return online
}

// Snapshot returns the cached (or freshly polled) snapshot for a device.
func (r *DeviceRegistry) Snapshot(name string) types.DeviceSnapshot {
	_, snap := r.get(name)
	return snap
}

func (r *DeviceRegistry) get(name string) (bool, types.DeviceSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.cache[name]; ok && time.Since(c.at) < r.ttl {
		return c.online, c.snapshot
	}

	a, ok := r.adapters[name]
	if !ok {
		return false, types.DeviceSnapshot{}
	}

	online := safeOnline(a)
	snap := types.DeviceSnapshot{}
	if online {
		snap = safeSnapshot(a)
	}
	r.cache[name] = cachedSnapshot{at: time.Now(), online: online, snapshot: snap}
	return online, snap
}

// safeOnline never lets one misbehaving adapter panic the registry.
func safeOnline(a DeviceAdapter) (online bool) {
	defer func() {
		if recover() != nil {
			online = false
		}
	}()
	return a.Online()
}

func safeSnapshot(a DeviceAdapter) (snap types.DeviceSnapshot) {
	defer func() {
		if recover() != nil {
			snap = types.DeviceSnapshot{}
		}
	}()
	return a.Snapshot()
}
