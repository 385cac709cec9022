package manager

import (
	"time"

	"modeld/pkg/types"
)

// stopLocked tears an idle model down immediately. Callers must hold c.mu
// and must only pass a modelState with no in-flight requests (the eviction
// path enforces this via pickEvictionVictim). The actual process kill runs
// in a background goroutine so admission never blocks on it.
func (c *Controller) stopLocked(ms *modelState) {
	if ms.cancelStart != nil {
		ms.cancelStart()
	}
	handle := ms.handle
	ms.handle = nil
	ms.variant = nil
	ms.state = types.StateStopped
	ms.failReason = ""
	c.refreshReservations()

	if handle == nil {
		return
	}
	runner := c.runner
	drain := c.drainTimeout
	go func() {
		_ = runner.Stop(handle, drain)
	}()
}

// StopModel gracefully drains a Routing or Starting model and stops it.
// It waits up to the configured drain timeout for in-flight requests to
// finish before killing the process, then leaves the model Stopped.
func (c *Controller) StopModel(alias string) error {
	ms, err := c.resolve(alias)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if ms.cancelStart != nil {
		ms.cancelStart() // interrupt a Starting attempt (Scenario S4)
	}
	if ms.state != types.StateRouting && ms.state != types.StateStarting {
		c.mu.Unlock()
		return nil
	}
	ms.state = types.StateDraining
	c.mu.Unlock()
	c.pub.Publish(Event{Name: "drain_start", ModelID: ms.def.Name})

	deadline := time.Now().Add(c.drainTimeout)
	for {
		c.mu.RLock()
		inFlight := ms.inFlight
		c.mu.RUnlock()
		if inFlight == 0 {
			break
		}
		if time.Now().After(deadline) {
			c.pub.Publish(Event{Name: "drain_timeout", ModelID: ms.def.Name, Fields: map[string]any{"in_flight": inFlight}})
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	c.mu.Lock()
	handle := ms.handle
	ms.handle = nil
	ms.variant = nil
	ms.state = types.StateStopped
	ms.failReason = ""
	c.refreshReservations()
	c.mu.Unlock()

	if handle != nil {
		if err := c.runner.Stop(handle, c.drainTimeout); err != nil {
			c.pub.Publish(Event{Name: "stop_error", ModelID: ms.def.Name, Fields: map[string]any{"error": err.Error()}})
		}
	}
	c.pub.Publish(Event{Name: "stop_done", ModelID: ms.def.Name})
	return nil
}

// StartSweeper launches the idle-timeout background sweeper. It stops
// Routing models with no in-flight work whose last activity is older than
// the configured idle timeout, once per sweep period (Testable Property 4).
func (c *Controller) StartSweeper() {
	c.stopSweeper = make(chan struct{})
	c.sweeperDone = make(chan struct{})
	go func() {
		defer close(c.sweeperDone)
		ticker := time.NewTicker(c.sweepPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.sweepIdle()
			case <-c.stopSweeper:
				return
			}
		}
	}()
}

// StopSweeper halts the background sweeper started by StartSweeper.
func (c *Controller) StopSweeper() {
	if c.stopSweeper == nil {
		return
	}
	close(c.stopSweeper)
	<-c.sweeperDone
	c.stopSweeper = nil
}

func (c *Controller) sweepIdle() {
	now := time.Now()
	c.mu.RLock()
	var idle []string
	for name, ms := range c.models {
		if ms.state == types.StateRouting && ms.inFlight == 0 && now.Sub(ms.lastActivity) > c.idleTimeout {
			idle = append(idle, name)
		}
	}
	c.mu.RUnlock()

	for _, name := range idle {
		c.pub.Publish(Event{Name: "idle_evict", ModelID: name})
		_ = c.StopModel(name)
	}
}
