package metric

import "github.com/prometheus/client_golang/prometheus"

// KeyCounter reports the number of stored keys.
type KeyCounter interface {
	Len() int
}

// Collector reports keyspace statistics read at scrape time.
type Collector struct {
	store KeyCounter
	keys  *prometheus.Desc
}

// NewCollector creates a collector for the given store.
func NewCollector(store KeyCounter) *Collector {
	return &Collector{
		store: store,
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "keys"),
			"Number of keys currently stored.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.store.Len()))
}
