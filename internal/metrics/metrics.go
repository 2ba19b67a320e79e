// Package metrics exposes Prometheus instrumentation for the ranking
// engine: task sampling, comparison processing, and reputation runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TasksIssuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_tasks_issued_total",
			Help: "Total number of next-task offers handed out, by venue",
		},
		[]string{"venue_id"},
	)

	TasksExhaustedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_tasks_exhausted_total",
			Help: "Total number of next-task requests that found no eligible submission",
		},
		[]string{"venue_id"},
	)

	ComparisonsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_comparisons_processed_total",
			Help: "Total number of record-comparison requests handled, including failed ones, by venue",
		},
		[]string{"venue_id"},
	)

	ComparisonProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_comparison_processing_duration_seconds",
			Help:    "Duration of a single comparison's belief update",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"venue_id"},
	)

	ReputationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_reputation_runs_total",
			Help: "Total number of reputation fixed-point runs, by venue and mode",
		},
		[]string{"venue_id", "mode", "result"},
	)

	ReputationRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ranking_reputation_run_duration_seconds",
			Help:    "Duration of a full reputation fixed-point run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"venue_id", "mode"},
	)

	ReviewerAccuracyScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ranking_reviewer_accuracy_scored_total",
			Help: "Total number of reviewer accuracy scoring runs, by venue",
		},
		[]string{"venue_id"},
	)
)

// RecordReputationRun records the outcome and duration of a reputation
// fixed-point run.
func RecordReputationRun(venueID, mode string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	ReputationRunsTotal.WithLabelValues(venueID, mode, result).Inc()
	ReputationRunDuration.WithLabelValues(venueID, mode).Observe(duration.Seconds())
}

// RecordComparisonProcessed records a single processed comparison.
func RecordComparisonProcessed(venueID string, duration time.Duration) {
	ComparisonsProcessedTotal.WithLabelValues(venueID).Inc()
	ComparisonProcessingDuration.WithLabelValues(venueID).Observe(duration.Seconds())
}

// RecordTaskIssued records a successful next-task offer.
func RecordTaskIssued(venueID string) {
	TasksIssuedTotal.WithLabelValues(venueID).Inc()
}

// RecordTaskExhausted records a next-task request that found nothing to offer.
func RecordTaskExhausted(venueID string) {
	TasksExhaustedTotal.WithLabelValues(venueID).Inc()
}
