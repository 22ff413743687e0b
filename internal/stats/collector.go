package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	labelDesc = prometheus.NewDesc(
		"secor_label_info",
		"Stats namespace label; the value is always 1.",
		[]string{"key", "value"},
		nil,
	)
	counterDesc = prometheus.NewDesc(
		"secor_counter",
		"Stats namespace counter.",
		[]string{"name"},
		nil,
	)
	gaugeDesc = prometheus.NewDesc(
		"secor_gauge",
		"Stats namespace gauge.",
		[]string{"name"},
		nil,
	)
)

// Describe implements prometheus.Collector.
func (n *Namespace) Describe(ch chan<- *prometheus.Desc) {
	ch <- labelDesc
	ch <- counterDesc
	ch <- gaugeDesc
}

// Collect implements prometheus.Collector. Values are read at scrape time.
func (n *Namespace) Collect(ch chan<- prometheus.Metric) {
	snap := n.Snapshot()
	for k, v := range snap.Labels {
		ch <- prometheus.MustNewConstMetric(labelDesc, prometheus.GaugeValue, 1, k, v)
	}
	for name, v := range snap.Counters {
		ch <- prometheus.MustNewConstMetric(counterDesc, prometheus.CounterValue, float64(v), name)
	}
	for name, v := range snap.Gauges {
		ch <- prometheus.MustNewConstMetric(gaugeDesc, prometheus.GaugeValue, v, name)
	}
}

// Gatherer returns a Prometheus gatherer that merges the default registry
// with the namespace.
func (n *Namespace) Gatherer() prometheus.Gatherer {
	reg := prometheus.NewRegistry()
	reg.MustRegister(n)
	return prometheus.Gatherers{prometheus.DefaultGatherer, reg}
}
