package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "quizrally"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Storage metrics
	Mutations     *prometheus.CounterVec
	Flushes       *prometheus.CounterVec
	FlushDuration prometheus.Histogram
	LastFlush     prometheus.Gauge

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates a registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "mutations_total",
			Help:      "Store mutations by table",
		}, []string{"table"}),

		Flushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "flushes_total",
			Help:      "Snapshot writes by result",
		}, []string{"result"}),

		FlushDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "flush_duration_seconds",
			Help:      "Time spent writing the snapshot file",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}),

		LastFlush: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "last_flush_timestamp_seconds",
			Help:      "Unix timestamp of the last successful snapshot write",
		}),

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.Mutations,
		r.Flushes,
		r.FlushDuration,
		r.LastFlush,
		r.RequestsTotal,
		r.RequestDuration,
	)
	return r
}

// MustRegister adds further collectors.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	r.registry.MustRegister(cs...)
}

// Gatherer exposes the underlying registry for tests and tooling.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// ObserveMutation implements storage.Observer.
func (r *Registry) ObserveMutation(table string) {
	r.Mutations.WithLabelValues(table).Inc()
}

// ObserveFlush implements storage.Observer.
func (r *Registry) ObserveFlush(elapsed time.Duration, err error) {
	if err != nil {
		r.Flushes.WithLabelValues("error").Inc()
		return
	}
	r.Flushes.WithLabelValues("ok").Inc()
	r.FlushDuration.Observe(elapsed.Seconds())
	r.LastFlush.SetToCurrentTime()
}

// ObserveRequest records one HTTP request. route is the matched route
// pattern, not the raw path.
func (r *Registry) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.RequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
