// Package metrics exposes Prometheus counters around the reconciliation
// core's entry points. The core itself swallows malformed input by design;
// this is where drop rates become visible.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	EventsApplied *prometheus.CounterVec
	EventsDropped *prometheus.CounterVec
	SnapshotRows  prometheus.Counter
	SnapshotDupes prometheus.Counter
	FeedConnects  prometheus.Counter
	FeedDrops     prometheus.Counter

	registry *prometheus.Registry
}

// New creates and registers all metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		EventsApplied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "videome_events_applied_total",
				Help: "Lifecycle events merged into the meeting list, by event kind.",
			},
			[]string{"kind"},
		),
		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "videome_events_dropped_total",
				Help: "Events that caused no state transition, by reason.",
			},
			[]string{"reason"},
		),
		SnapshotRows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "videome_snapshot_rows_total",
				Help: "Session rows received in bulk snapshots.",
			},
		),
		SnapshotDupes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "videome_snapshot_duplicate_rows_total",
				Help: "Snapshot rows discarded as older duplicates of the same meeting.",
			},
		),
		FeedConnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "videome_feed_connects_total",
				Help: "Successful connections to the provider event feed.",
			},
		),
		FeedDrops: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "videome_feed_disconnects_total",
				Help: "Connections to the provider event feed that were lost.",
			},
		),
		registry: reg,
	}

	reg.MustRegister(m.EventsApplied)
	reg.MustRegister(m.EventsDropped)
	reg.MustRegister(m.SnapshotRows)
	reg.MustRegister(m.SnapshotDupes)
	reg.MustRegister(m.FeedConnects)
	reg.MustRegister(m.FeedDrops)

	return m
}

// Handler returns an http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// EventApplied implements meetings.Observer.
func (m *Metrics) EventApplied(kind string) {
	m.EventsApplied.WithLabelValues(kind).Inc()
}

// EventDropped implements meetings.Observer.
func (m *Metrics) EventDropped(reason string) {
	m.EventsDropped.WithLabelValues(reason).Inc()
}

// FeedConnected implements realtime.FeedObserver.
func (m *Metrics) FeedConnected() {
	m.FeedConnects.Inc()
}

// FeedDropped implements realtime.FeedObserver.
func (m *Metrics) FeedDropped() {
	m.FeedDrops.Inc()
}

// RecordSnapshot tracks the size of a bulk snapshot and how many rows the
// deduplicator discarded.
func (m *Metrics) RecordSnapshot(rows, kept int) {
	m.SnapshotRows.Add(float64(rows))
	if rows > kept {
		m.SnapshotDupes.Add(float64(rows - kept))
	}
}
