package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/quizrally-go/internal/core/service"
)

// StatusFunc returns the current system status.
type StatusFunc func(ctx context.Context) (*service.SystemStatus, error)

// StatusCollector samples store and mirror statistics at scrape time.
type StatusCollector struct {
	status  StatusFunc
	timeout time.Duration

	records *prometheus.Desc
	dirty   *prometheus.Desc
	mirror  *prometheus.Desc
}

// NewStatusCollector creates a collector backed by status.
func NewStatusCollector(status StatusFunc) *StatusCollector {
	return &StatusCollector{
		status:  status,
		timeout: 2 * time.Second,
		records: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "records"),
			"Records held in memory by table",
			[]string{"table"}, nil),
		dirty: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "dirty"),
			"1 when the store has changes not yet written to disk",
			nil, nil),
		mirror: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "mirror", "saves_total"),
			"Mirror saves by result",
			[]string{"result"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StatusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.records
	ch <- c.dirty
	ch <- c.mirror
}

// Collect implements prometheus.Collector.
func (c *StatusCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	st, err := c.status(ctx)
	if err != nil || st == nil || st.Storage == nil {
		return
	}

	for table, n := range st.Storage.Counts {
		ch <- prometheus.MustNewConstMetric(c.records, prometheus.GaugeValue, float64(n), table)
	}
	dirty := 0.0
	if st.Storage.Dirty {
		dirty = 1
	}
	ch <- prometheus.MustNewConstMetric(c.dirty, prometheus.GaugeValue, dirty)

	if st.Mirror != nil {
		ch <- prometheus.MustNewConstMetric(c.mirror, prometheus.CounterValue, float64(st.Mirror.Saved), "saved")
		ch <- prometheus.MustNewConstMetric(c.mirror, prometheus.CounterValue, float64(st.Mirror.Failed), "failed")
		ch <- prometheus.MustNewConstMetric(c.mirror, prometheus.CounterValue, float64(st.Mirror.Dropped), "dropped")
	}
}
