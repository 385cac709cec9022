package manager

import (
	"context"

	"modeld/internal/config"
	"modeld/pkg/types"
)

// Catalogue exposes the controller's model catalogue for read-only listing.
func (c *Controller) Catalogue() *config.Catalogue { return c.cat }

// StopAll gracefully stops every model currently Routing or Starting and
// returns the names it acted on.
func (c *Controller) StopAll() []string {
	c.mu.RLock()
	var names []string
	for name, ms := range c.models {
		if ms.state == types.StateRouting || ms.state == types.StateStarting {
			names = append(names, name)
		}
	}
	c.mu.RUnlock()

	for _, name := range names {
		_ = c.StopModel(name)
	}
	return names
}

// RestartAutostart stops and restarts every catalogue entry flagged
// auto_start, returning the names it started successfully.
func (c *Controller) RestartAutostart(ctx context.Context) []string {
	defs := c.cat.AutoStartModels()
	var started []string
	for _, def := range defs {
		_ = c.StopModel(def.Name)
	}
	for _, def := range defs {
		if _, err := c.EnsureRunning(ctx, def.Name); err == nil {
			started = append(started, def.Name)
		}
	}
	return started
}
