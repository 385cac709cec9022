// Package manager implements the Model Lifecycle Controller: it turns a
// catalogue entry and a request for it into a running, health-checked
// backend process, admits and evicts models under a per-device memory
// budget, and tears models down when idle or on request. It is structured
// into small files by concern:
//
//   - controller.go: core Controller type, constructor, read-only getters.
//   - state.go: per-model runtime state and its transitions.
//   - variant.go: launch variant selection against online devices.
//   - admission.go: per-device memory admission and LRU-idle eviction.
//   - start.go: EnsureRunning — single-flight start with cancellation.
//   - stop.go: graceful drain-then-stop and the idle sweeper.
//   - events.go, eventpub_memory.go: lifecycle event bus and its test double.
//   - sanity.go: startup checks for catalogue launch scripts and devices.
//
// External callers should treat this package as the orchestration layer and
// use Controller's exported methods only; modelState fields are subject to
// change.
package manager
