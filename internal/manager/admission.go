package manager

import (
	"modeld/pkg/types"
)

// memoryByState sums the declared memory reservation on device across every
// model currently in one of states, excluding exclude.
func (c *Controller) memoryByState(device string, exclude *modelState, states ...types.State) int {
	total := 0
	for _, ms := range c.models {
		if ms == exclude {
			continue
		}
		if ms.variant == nil {
			continue
		}
		for _, s := range states {
			if ms.state == s {
				total += ms.variant.MemoryMB[device]
				break
			}
		}
	}
	return total
}

// fits reports whether candidate's variant reservation fits within a
// device's live free memory, after allowing for models already Starting on
// it (their reservation is not yet reflected in the live snapshot). Routing
// models' usage is assumed already reflected in the snapshot itself, per
// the memory reservation invariant (Testable Property 6).
func (c *Controller) fits(ms *modelState, v *types.LaunchVariant) bool {
	for device, need := range v.MemoryMB {
		free := c.devices.Snapshot(device).FreeMB - c.memoryByState(device, ms, types.StateStarting)
		if need > free {
			return false
		}
	}
	return true
}

// refreshReservations recomputes each device's total Routing-state
// reservation and pushes it into any adapter that tracks reservations
// internally (poolDevice). Callers must hold c.mu.
func (c *Controller) refreshReservations() {
	for _, name := range c.devices.Names() {
		c.devices.PushReservation(name, c.memoryByState(name, nil, types.StateRouting))
	}
}

// admit tries to reserve room for ms running v, evicting idle Routing
// models (lowest LastActivity first) one at a time until it fits or nothing
// more can be evicted. Models with in-flight requests are never touched
// (Testable Property 3, no-preemption).
func (c *Controller) admit(ms *modelState, v *types.LaunchVariant) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fits(ms, v) {
		return nil
	}

	for {
		victim := c.pickEvictionVictim(ms)
		if victim == nil {
			return types.ErrInsufficientMemory(ms.def.Name)
		}
		c.stopLocked(victim)
		if c.fits(ms, v) {
			return nil
		}
	}
}

// pickEvictionVictim returns the idle Routing model with the oldest
// LastActivity, excluding candidate itself and anything with in-flight work.
func (c *Controller) pickEvictionVictim(candidate *modelState) *modelState {
	var victim *modelState
	for _, ms := range c.models {
		if ms == candidate {
			continue
		}
		if ms.state != types.StateRouting || ms.inFlight > 0 {
			continue
		}
		if victim == nil || ms.lastActivity.Before(victim.lastActivity) {
			victim = ms
		}
	}
	return victim
}
