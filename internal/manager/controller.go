package manager

import (
	"sync"
	"time"

	"modeld/internal/config"
	"modeld/internal/logstream"
	"modeld/internal/process"
	"modeld/internal/registry"
	"modeld/pkg/types"
)

// Controller is the Model Lifecycle Controller: it owns every catalogued
// model's runtime state, admits and evicts models against a per-device
// memory budget, and serializes starts so at most one model is Starting at
// any instant (Testable Property 5).
type Controller struct {
	cat     *config.Catalogue
	devices *registry.DeviceRegistry
	runner  *process.Runner
	logs    *logstream.FanOut
	pub     EventPublisher

	healthTimeout time.Duration
	drainTimeout  time.Duration
	idleTimeout   time.Duration
	sweepPeriod   time.Duration

	mu     sync.RWMutex
	models map[string]*modelState

	// startGate serializes Starting transitions process-wide.
	startGate chan struct{}

	stopSweeper chan struct{}
	sweeperDone chan struct{}
}

// Config bundles a Controller's dependencies and timing knobs.
type Config struct {
	Catalogue     *config.Catalogue
	Devices       *registry.DeviceRegistry
	Runner        *process.Runner
	Logs          *logstream.FanOut
	Publisher     EventPublisher
	HealthTimeout time.Duration
	DrainTimeout  time.Duration
	IdleTimeout   time.Duration
	SweepPeriod   time.Duration
}

// New constructs a Controller with one Stopped modelState per catalogue entry.
func New(cfg Config) *Controller {
	pub := cfg.Publisher
	if pub == nil {
		pub = noopPublisher{}
	}
	c := &Controller{
		cat:           cfg.Catalogue,
		devices:       cfg.Devices,
		runner:        cfg.Runner,
		logs:          cfg.Logs,
		pub:           pub,
		healthTimeout: cfg.HealthTimeout,
		drainTimeout:  cfg.DrainTimeout,
		idleTimeout:   cfg.IdleTimeout,
		sweepPeriod:   cfg.SweepPeriod,
		models:        make(map[string]*modelState),
		startGate:     make(chan struct{}, 1),
	}
	if c.healthTimeout <= 0 {
		c.healthTimeout = 300 * time.Second
	}
	if c.drainTimeout <= 0 {
		c.drainTimeout = 30 * time.Second
	}
	if c.idleTimeout <= 0 {
		c.idleTimeout = 15 * time.Minute
	}
	if c.sweepPeriod <= 0 {
		c.sweepPeriod = 30 * time.Second
	}
	for i := range cfg.Catalogue.Models {
		def := &cfg.Catalogue.Models[i]
		c.models[def.Name] = newModelState(def)
	}
	return c
}

// resolve maps an alias or canonical name to its live modelState.
func (c *Controller) resolve(alias string) (*modelState, error) {
	def, ok := c.cat.Resolve(alias)
	if !ok {
		return nil, types.ErrModelNotFound(alias)
	}
	c.mu.RLock()
	ms := c.models[def.Name]
	c.mu.RUnlock()
	if ms == nil {
		return nil, types.ErrModelNotFound(alias)
	}
	return ms, nil
}

// Snapshot returns the current state of every catalogued model.
func (c *Controller) Snapshot() []stateSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]stateSnapshot, 0, len(c.models))
	for _, ms := range c.models {
		out = append(out, ms.snapshot())
	}
	return out
}

// SnapshotOne returns the current state of a single model.
func (c *Controller) SnapshotOne(alias string) (stateSnapshot, error) {
	ms, err := c.resolve(alias)
	if err != nil {
		return stateSnapshot{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return ms.snapshot(), nil
}

// ValidateRequest checks that path is compatible with alias's declared mode.
func (c *Controller) ValidateRequest(alias, path string) (*types.ModelDef, error) {
	ms, err := c.resolve(alias)
	if err != nil {
		return nil, err
	}
	iface, ok := registry.InterfaceFor(ms.def.Mode)
	if !ok {
		return nil, types.ErrModeMismatch(path, ms.def.Mode)
	}
	if ok, _ := iface.Validate(path, ms.def.Name); !ok {
		return nil, types.ErrModeMismatch(path, ms.def.Mode)
	}
	return ms.def, nil
}

// Close stops the sweeper and every running model.
func (c *Controller) Close() {
	c.StopSweeper()
	c.mu.RLock()
	names := make([]string, 0, len(c.models))
	for name, ms := range c.models {
		if ms.state == types.StateRouting || ms.state == types.StateStarting {
			names = append(names, name)
		}
	}
	c.mu.RUnlock()
	for _, name := range names {
		_ = c.StopModel(name)
	}
}
