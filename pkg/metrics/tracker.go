package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup modes
const (
	ModeRequired = "required"
	ModeOptional = "optional"
	ModeAll      = "all"
)

// Lookup results
const (
	ResultFound    = "found"
	ResultNotFound = "not_found"
	ResultError    = "error"
)

// promauto
var (
	CreatedWatcherCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_watcher_created_total",
		Help: "The total number of watchers which has been constructed, race losers included",
	})

	DiscardedWatcherCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_watcher_discarded_total",
		Help: "The total number of watchers which lost the race to be tracked and has been dropped",
	})

	OpenedWatcherCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_watcher_opened_total",
		Help: "The total number of watchers which has been opened against the directory",
	})

	ClosedWatcherCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_watcher_closed_total",
		Help: "The total number of watchers which has been closed",
	})

	TrackedWatcherGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tracker_watcher_gauge",
		Help: "The number of watchers tracked by registers",
	})

	LookupCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_lookup_total",
			Help: "The total number of service lookups",
		},
		[]string{"mode", "result"},
	)

	OpeningWatcherHistogram = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tracker_open_watcher_seconds_bucket",
		Help:    "The latency of opening a watcher against the directory",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10},
	})

	DirectoryEventCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_directory_event_total",
			Help: "The total number of change events received from a directory",
		},
		[]string{"directory"},
	)
)
