// Package metric provides Prometheus metrics for respkv.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: the metrics registry and its HTTP handler
//   - collector.go: a collector reporting keyspace statistics on scrape
//
// Metrics include:
//
//   - Connection gauges and counters
//   - Per-command counters and latency histograms
//   - Protocol error counters
//   - Number of stored keys
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
