package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	ParsingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dts2as_parsing_seconds",
		Help:    "Time spent parsing a declaration file.",
		Buckets: prometheus.DefBuckets,
	}, []string{"language"})

	ResolveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dts2as_resolve_seconds",
		Help:    "Time spent in each resolver pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	FilesResolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dts2as_files_resolved_total",
		Help: "Total number of declaration files resolved into the symbol table.",
	})

	SyntaxIssuesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dts2as_syntax_issues_total",
		Help: "Total number of ERROR or MISSING nodes reported by the grammar.",
	})

	ResolverWarningsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dts2as_resolver_warnings_total",
		Help: "Total number of skipped declarations and members, by reason.",
	}, []string{"reason"})

	DefinitionsTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dts2as_definitions",
		Help: "Number of package-level definitions in the symbol table after the last run.",
	}, []string{"kind"})

	UnitsEmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dts2as_units_emitted_total",
		Help: "Total number of ActionScript units rendered.",
	})

	EmitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dts2as_emit_seconds",
		Help:    "Time spent rendering all units of a run.",
		Buckets: prometheus.DefBuckets,
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dts2as_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})

	WatcherRunsThrottledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dts2as_watcher_runs_throttled_total",
		Help: "Total number of regeneration runs delayed by the rate limiter.",
	})
)
