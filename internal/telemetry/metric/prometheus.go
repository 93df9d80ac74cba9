// Package metric provides Prometheus metrics for hc-state.
package metric

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "hc_state"

// Outcome labels.
const (
	OutcomeOK           = "ok"
	OutcomeConductorErr = "conductor_error"
	OutcomeTransportErr = "transport_error"
	OutcomeTimeout      = "timeout"
)

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	RPCRequests *prometheus.CounterVec
	RPCDuration *prometheus.HistogramVec
	Connections *prometheus.CounterVec
}

// NewRegistry creates a registry with all metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		RPCRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Conductor RPC calls by interface, call and outcome.",
		}, []string{"interface", "call", "outcome"}),
		RPCDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Conductor RPC round-trip latency.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"interface", "call"}),
		Connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "WebSocket connection attempts by interface and outcome.",
		}, []string{"interface", "outcome"}),
	}

	r.registry.MustRegister(r.RPCRequests, r.RPCDuration, r.Connections, NewCollector())
	return r
}

// ObserveRPC records one RPC call. Safe on a nil Registry.
func (r *Registry) ObserveRPC(iface, call, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RPCRequests.WithLabelValues(iface, call, outcome).Inc()
	r.RPCDuration.WithLabelValues(iface, call).Observe(elapsed.Seconds())
}

// ObserveConnect records one connection attempt. Safe on a nil Registry.
func (r *Registry) ObserveConnect(iface, outcome string) {
	if r == nil {
		return
	}
	r.Connections.WithLabelValues(iface, outcome).Inc()
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically writes all metrics to path in the textfile
// collector format.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

// WriteText writes all metrics in the text exposition format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
