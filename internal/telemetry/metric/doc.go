// Package metric exposes Prometheus metrics.
//
// Registry owns a private prometheus.Registry with storage, HTTP and
// runtime metrics. It implements storage.Observer so the engine reports
// mutations and flushes directly. StatusCollector samples record counts
// and mirror counters at scrape time.
//
// Metrics are served at /metrics in the Prometheus text format.
package metric
