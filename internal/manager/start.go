package manager

import (
	"context"
	"time"

	"modeld/internal/process"
	"modeld/internal/registry"
	"modeld/pkg/types"
)

// EnsureRunning brings alias to Routing, starting it if necessary. Calls for
// the same model while it is already Starting coalesce onto that single
// attempt instead of racing separate starts (Testable Property 5 is upheld
// process-wide via the startGate, not just per-model).
func (c *Controller) EnsureRunning(ctx context.Context, alias string) (*modelState, error) {
	ms, err := c.resolve(alias)
	if err != nil {
		return nil, err
	}

	for {
		c.mu.Lock()
		switch ms.state {
		case types.StateRouting:
			ms.lastActivity = time.Now()
			c.mu.Unlock()
			return ms, nil
		case types.StateStarting:
			waiters := ms.startWaiters
			c.mu.Unlock()
			select {
			case <-waiters:
				continue // state changed; re-evaluate from the top
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		c.mu.Unlock()
		break
	}

	select {
	case c.startGate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.startGate }()

	c.mu.Lock()
	if ms.state == types.StateRouting {
		ms.lastActivity = time.Now()
		c.mu.Unlock()
		return ms, nil
	}
	ms.state = types.StateStarting
	waiters := make(chan struct{})
	ms.startWaiters = waiters
	startCtx, cancel := context.WithCancel(context.Background())
	ms.cancelStart = cancel
	c.mu.Unlock()
	c.pub.Publish(Event{Name: "start_begin", ModelID: ms.def.Name})

	startErr := c.doStart(startCtx, ms)

	c.mu.Lock()
	cancel()
	ms.cancelStart = nil
	c.mu.Unlock()
	close(waiters)

	if startErr != nil {
		return nil, startErr
	}
	return ms, nil
}

// doStart selects a variant, admits the model into the memory budget,
// spawns its process, and waits for it to pass health checks. startCtx is
// canceled if StopModel interrupts a Starting model (Scenario S4).
func (c *Controller) doStart(startCtx context.Context, ms *modelState) error {
	variant := selectVariant(ms.def, c.devices)
	if variant == nil {
		c.revertToStopped(ms, "")
		return types.ErrNoUsableDevice(ms.def.Name)
	}

	if err := c.admit(ms, variant); err != nil {
		c.revertToStopped(ms, "")
		return err
	}

	handle, err := c.runner.Spawn(ms.def.Name, variant.LaunchScript)
	if err != nil {
		c.markFailed(ms, err.Error())
		return types.ErrBackendUnavailable(ms.def.Name, err.Error())
	}

	c.mu.Lock()
	ms.variant = variant
	ms.handle = handle
	ms.startedAt = time.Now()
	c.mu.Unlock()

	iface, ok := registry.InterfaceFor(ms.def.Mode)
	if !ok {
		c.killAndFail(ms, "no interface adapter for mode "+string(ms.def.Mode))
		return types.ErrModeMismatch("", ms.def.Mode)
	}

	healthy, reason := iface.Health(startCtx, ms.def.Port, ms.startedAt, c.healthTimeout)
	if startCtx.Err() != nil {
		// StopModel canceled us mid-start. It usually already tore the
		// process down, but if it grabbed ms.handle before the assignment
		// above made our real handle visible (Scenario S4 outrunning
		// Spawn's fork+exec), that teardown ran against a nil handle and
		// the process we just spawned is still live. Stop whatever is
		// currently attached rather than assume StopModel already handled it.
		c.stopHandle(ms)
		return startCtx.Err()
	}
	if !healthy {
		c.killAndFail(ms, reason)
		return types.ErrStartTimeout(ms.def.Name)
	}

	c.mu.Lock()
	ms.state = types.StateRouting
	ms.lastActivity = time.Now()
	ms.failReason = ""
	c.refreshReservations()
	c.mu.Unlock()
	c.pub.Publish(Event{Name: "start_ready", ModelID: ms.def.Name, Fields: map[string]any{"variant": variant.Name}})
	go c.watchProcess(ms, handle)
	return nil
}

// watchProcess waits for handle's process to exit and, if ms is still
// Routing on this exact handle when it does, transitions it to Failed and
// releases its reservation. If the model already moved on (a deliberate
// StopModel/stopLocked teardown, or a fresh start replaced the handle), the
// exit was expected and this is a no-op: whichever path retired the handle
// already ran refreshReservations itself.
func (c *Controller) watchProcess(ms *modelState, handle *process.Handle) {
	<-handle.Done()

	c.mu.Lock()
	if ms.handle != handle || ms.state != types.StateRouting {
		c.mu.Unlock()
		return
	}
	ms.state = types.StateFailed
	ms.handle = nil
	ms.variant = nil
	ms.failReason = "process exited"
	c.refreshReservations()
	c.mu.Unlock()
	c.pub.Publish(Event{Name: "process_exited", ModelID: ms.def.Name})
}

func (c *Controller) revertToStopped(ms *modelState, reason string) {
	c.mu.Lock()
	ms.state = types.StateStopped
	ms.variant = nil
	ms.handle = nil
	ms.failReason = reason
	c.mu.Unlock()
}

func (c *Controller) markFailed(ms *modelState, reason string) {
	c.mu.Lock()
	ms.state = types.StateFailed
	ms.failReason = reason
	c.mu.Unlock()
	c.pub.Publish(Event{Name: "start_failed", ModelID: ms.def.Name, Fields: map[string]any{"reason": reason}})
}

// stopHandle stops whatever process is currently attached to ms, if any,
// and clears the field. Safe to call even if the handle was already
// stopped or cleared elsewhere; Runner.Stop is idempotent on a dead handle.
func (c *Controller) stopHandle(ms *modelState) {
	c.mu.Lock()
	handle := ms.handle
	ms.handle = nil
	c.mu.Unlock()
	if handle != nil {
		_ = c.runner.Stop(handle, c.drainTimeout)
	}
}

func (c *Controller) killAndFail(ms *modelState, reason string) {
	c.stopHandle(ms)
	c.markFailed(ms, reason)
}
