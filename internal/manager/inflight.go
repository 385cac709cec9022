package manager

import "time"

// BeginRequest marks one request in flight against a Routing model,
// preventing eviction or idle shutdown while it runs (Testable Property 3).
// The returned func must be deferred to release it.
func (c *Controller) BeginRequest(alias string) (func(), error) {
	ms, err := c.resolve(alias)
	if err != nil {
		return func() {}, err
	}
	c.mu.Lock()
	ms.inFlight++
	ms.lastActivity = time.Now()
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		ms.inFlight--
		ms.lastActivity = time.Now()
		c.mu.Unlock()
	}, nil
}
