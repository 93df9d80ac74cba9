// Package metric provides Prometheus metrics for hc-state.
package metric

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/hcstate-go/internal/infra/buildinfo"
)

// Collector reports static build information as a constant gauge.
type Collector struct {
	desc *prometheus.Desc
}

// NewCollector creates a build info collector.
func NewCollector() *Collector {
	return &Collector{
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "build_info"),
			"Build information of the hc-state binary.",
			[]string{"version", "commit"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	info := buildinfo.Get()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, 1, info.Version, info.Commit)
}
