package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Movement metrics
	MovementsApproved *prometheus.CounterVec
	MovementsHeld     *prometheus.CounterVec
	MovementsRejected *prometheus.CounterVec
	MovementDuration  prometheus.Histogram
	MovementAmount    prometheus.Histogram

	// Ledger metrics
	EntriesPosted   prometheus.Counter
	EntriesVoided   prometheus.Counter
	EntriesReversed prometheus.Counter

	// Sweep metrics
	SweepRuns     prometheus.Counter
	SweepPromoted prometheus.Counter
	SweepVoided   prometheus.Counter

	// Balance metrics
	BalanceCacheHits    prometheus.Counter
	BalanceCacheMisses  prometheus.Counter
	ReconciliationDrift *prometheus.GaugeVec

	// Database metrics
	DBErrors *prometheus.CounterVec

	// Outbox metrics
	EventsPublished prometheus.Counter
	EventsFailed    prometheus.Counter
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		MovementsApproved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movements_approved_total",
				Help: "Total number of movements approved and posted",
			},
			[]string{"type"},
		),
		MovementsHeld: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movements_held_total",
				Help: "Total number of movements held pending re-evaluation",
			},
			[]string{"type", "reason"},
		),
		MovementsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_movements_rejected_total",
				Help: "Total number of movements rejected by the gate",
			},
			[]string{"type", "reason"},
		),
		MovementDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_movement_duration_seconds",
			Help:    "Duration of movement execution",
			Buckets: prometheus.DefBuckets,
		}),
		MovementAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_movement_amount",
			Help:    "Movement amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		EntriesPosted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_posted_total",
			Help: "Total number of entries promoted to posted",
		}),
		EntriesVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_voided_total",
			Help: "Total number of pending entries voided",
		}),
		EntriesReversed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_entries_reversed_total",
			Help: "Total number of posted entries reversed",
		}),

		SweepRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_sweep_runs_total",
			Help: "Total number of held-movement sweep passes",
		}),
		SweepPromoted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_sweep_promoted_total",
			Help: "Total number of held operations promoted by sweeps",
		}),
		SweepVoided: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_sweep_voided_total",
			Help: "Total number of held operations voided by sweeps",
		}),

		BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_cache_hits_total",
			Help: "Total advisory balance cache hits",
		}),
		BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_balance_cache_misses_total",
			Help: "Total advisory balance cache misses",
		}),
		ReconciliationDrift: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_reconciliation_drift",
				Help: "Difference between running total and full re-aggregation",
			},
			[]string{"account_id"},
		),

		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		EventsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_events_published_total",
			Help: "Total outbox events published",
		}),
		EventsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_outbox_events_failed_total",
			Help: "Total outbox events that failed to publish",
		}),
	}
}
