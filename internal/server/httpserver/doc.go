// Package httpserver provides the admin HTTP server for respkv.
//
// It uses the Go standard library net/http and serves operational
// endpoints only; the data path is the RESP listener.
//
//   - GET /health: liveness
//   - GET /ready: readiness of the RESP listener
//   - GET /status: build info, key count and open connections
//   - GET /metrics: Prometheus exposition
package httpserver
