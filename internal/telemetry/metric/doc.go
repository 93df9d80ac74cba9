// Package metric provides Prometheus metrics for hc-state.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Registry of conductor RPC metrics
//   - collector.go: Build info collector
//
// Metrics include:
//
//   - RPC call counters by interface, call and outcome
//   - RPC latency histograms
//   - Connection attempts
//
// A CLI process is short lived, so metrics are not served over HTTP. They are
// written once on exit in the node_exporter textfile format when a metrics
// file is configured.
package metric
