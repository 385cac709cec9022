package manager

import (
	"context"
	"time"

	"modeld/internal/process"
	"modeld/pkg/types"
)

// modelState is the controller's live view of one catalogued model. All
// mutable fields are guarded by the owning Controller's mu.
type modelState struct {
	def *types.ModelDef

	state        types.State
	variant      *types.LaunchVariant
	handle       *process.Handle
	failReason   string
	lastActivity time.Time
	startedAt    time.Time
	inFlight     int

	// cancelStart, when non-nil, cancels an in-progress start so a stop
	// request arriving during Starting can interrupt it (Scenario S4).
	cancelStart context.CancelFunc

	// startWaiters is signaled (by closing) when the state leaves Starting,
	// letting concurrent callers of EnsureRunning for the same model coalesce
	// onto a single start attempt instead of racing separate ones.
	startWaiters chan struct{}
}

func newModelState(def *types.ModelDef) *modelState {
	return &modelState{def: def, state: types.StateStopped}
}

// port returns the model's configured listen port, whether or not a process
// is running.
func (ms *modelState) port() int {
	if ms.def == nil {
		return 0
	}
	return ms.def.Port
}

// snapshot returns an immutable copy safe to hand to a caller outside the lock.
type stateSnapshot struct {
	Name         string
	State        types.State
	Variant      string
	FailReason   string
	LastActivity time.Time
	StartedAt    time.Time
	InFlight     int
	PID          int
	Port         int
}

func (ms *modelState) snapshot() stateSnapshot {
	s := stateSnapshot{
		Name:         ms.def.Name,
		State:        ms.state,
		FailReason:   ms.failReason,
		LastActivity: ms.lastActivity,
		StartedAt:    ms.startedAt,
		InFlight:     ms.inFlight,
		Port:         ms.port(),
	}
	if ms.variant != nil {
		s.Variant = ms.variant.Name
	}
	if ms.handle != nil {
		s.PID = ms.handle.PID
	}
	return s
}
