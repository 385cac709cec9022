// Package httpapi implements the full HTTP surface: the catalogued
// admin/analytics/billing endpoints and the Routing Proxy that lazily starts
// a model and forwards OpenAI-compatible traffic to it. Grounded in the
// teacher's chi-based server, split by concern the way the teacher split
// config.go/context.go/logging.go/metrics.go out of its original
// monolithic server.go:
//
//   - server.go: Deps bundle, NewMux, shared middleware wiring.
//   - errors.go: central HTTPError-to-JSON-response mapping.
//   - routes_gateway.go: service identity, health, OpenAI-shaped catalogue.
//   - routes_proxy.go: the Routing Proxy (§4.8).
//   - routes_admin.go: per-model status, start/stop, restart-autostart, stop-all.
//   - routes_logs.go: SSE log streaming, buffer stats, retention clear.
//   - routes_devices.go: device snapshots.
//   - routes_analytics.go: throughput, usage, token and cost trend endpoints.
//   - routes_billing.go: pricing configuration.
//   - routes_data.go: orphan detection and storage stats.
//   - config.go, context.go, logging.go, metrics.go: ambient HTTP-layer knobs.
//   - swagger_stub.go: no-op MountSwagger; no documentation UI is served.
package httpapi
