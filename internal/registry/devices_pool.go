package registry

import (
	"sync"

	"modeld/pkg/types"
)

func init() {
	RegisterDeviceKind("pool", newPoolDevice)
}

// poolDevice models a fixed-size named memory pool declared in configuration
// (the spec's "gA: 16 GB" style examples) without depending on vendor GPU
// tooling. Reservations are tracked externally by the lifecycle controller
// and pushed in via SetReserved; the pool never queries hardware itself.
type poolDevice struct {
	name    string
	totalMB int

	mu       sync.Mutex
	reserved int
}

func newPoolDevice(name string, cfg map[string]any) (DeviceAdapter, error) {
	total := 0
	if v, ok := cfg["total_mb"]; ok {
		switch n := v.(type) {
		case int:
			total = n
		case int64:
			total = int(n)
		case float64:
			total = int(n)
		}
	}
	return &poolDevice{name: name, totalMB: total}, nil
}

func (p *poolDevice) Name() string { return p.name }

func (p *poolDevice) Online() bool { return true }

// SetReserved updates the amount of this pool's memory currently reserved by
// the lifecycle controller for Routing models.
func (p *poolDevice) SetReserved(mb int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reserved = mb
}

func (p *poolDevice) Snapshot() types.DeviceSnapshot {
	p.mu.Lock()
	reserved := p.reserved
	p.mu.Unlock()
	free := p.totalMB - reserved
	if free < 0 {
		free = 0
	}
	return types.DeviceSnapshot{
		Kind:       "pool",
		MemoryKind: "vram",
		TotalMB:    p.totalMB,
		FreeMB:     free,
		UsedMB:     p.totalMB - free,
	}
}
