// Package metrics provides observability for check evaluation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the check-evaluation counters. All methods are nil-safe so
// wiring metrics stays optional in tests and tools.
type Metrics struct {
	ChecksRun         prometheus.Counter
	ChecksTriggered   prometheus.Counter
	ChecksFromCache   prometheus.Counter
	ActionsRun        prometheus.Counter
	RulesRun          prometheus.Counter
	RulesTriggered    prometheus.Counter
	RulesDeduplicated prometheus.Counter

	HandleLatency prometheus.Histogram
}

// New creates and registers all check metrics on the default registry.
func New() *Metrics {
	return NewWith(nil)
}

// NewWith registers the metrics on the given registerer; nil means the
// default registry.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}
	return &Metrics{
		ChecksRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_checks_run_total",
			Help: "Total check evaluations started",
		}),
		ChecksTriggered: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_checks_triggered_total",
			Help: "Total check evaluations that triggered",
		}),
		ChecksFromCache: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_checks_from_cache_total",
			Help: "Total check evaluations served from the result cache",
		}),
		ActionsRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_actions_run_total",
			Help: "Total actions executed by triggered checks",
		}),
		RulesRun: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_rules_run_total",
			Help: "Total rule evaluations executed",
		}),
		RulesTriggered: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_rules_triggered_total",
			Help: "Total rule evaluations that triggered",
		}),
		RulesDeduplicated: factory.NewCounter(prometheus.CounterOpts{
			Name: "modsieve_rules_deduplicated_total",
			Help: "Total rule evaluations reused from an identical rule in the same pass",
		}),
		HandleLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "modsieve_check_handle_duration_seconds",
			Help:    "Duration of one check evaluation including filters, rules and actions",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// Snapshot is one evaluation's worth of counter increments, flushed in a
// single call so the emit always happens together.
type Snapshot struct {
	ChecksRun         int
	ChecksTriggered   int
	ChecksFromCache   int
	ActionsRun        int
	RulesRun          int
	RulesTriggered    int
	RulesDeduplicated int
}

// Record flushes a snapshot.
func (m *Metrics) Record(s Snapshot) {
	if m == nil {
		return
	}
	m.ChecksRun.Add(float64(s.ChecksRun))
	m.ChecksTriggered.Add(float64(s.ChecksTriggered))
	m.ChecksFromCache.Add(float64(s.ChecksFromCache))
	m.ActionsRun.Add(float64(s.ActionsRun))
	m.RulesRun.Add(float64(s.RulesRun))
	m.RulesTriggered.Add(float64(s.RulesTriggered))
	m.RulesDeduplicated.Add(float64(s.RulesDeduplicated))
}

// ObserveHandleLatency records the duration of one check evaluation.
func (m *Metrics) ObserveHandleLatency(d time.Duration) {
	if m == nil {
		return
	}
	m.HandleLatency.Observe(d.Seconds())
}
