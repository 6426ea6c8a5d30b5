// Package observability registers the engine's Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	insightsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "rules",
		Name:      "insights_emitted_total",
		Help:      "Number of insights produced by rule processors, labeled by processor and rule.",
	}, []string{"processor", "rule"})

	processorFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "rules",
		Name:      "processor_failures_total",
		Help:      "Number of processor runs that produced no insights because of an error.",
	}, []string{"processor"})

	checkFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "rules",
		Name:      "check_failures_total",
		Help:      "Number of failed sub-checks, labeled by processor and check.",
	}, []string{"processor", "check"})

	notificationsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "notifications",
		Name:      "outcomes_total",
		Help:      "Notification outcomes (created, suppressed, failed) labeled by rule.",
	}, []string{"rule", "outcome"})

	templateMismatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "notifications",
		Name:      "template_mismatches_total",
		Help:      "Renders that left placeholders unresolved, labeled by rule.",
	}, []string{"rule"})

	triggerDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "insights",
		Subsystem: "trigger",
		Name:      "duration_seconds",
		Help:      "Latency of synchronous trigger evaluation by event type and outcome.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"event_type", "outcome"})

	sweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "insights",
		Subsystem: "sweep",
		Name:      "duration_seconds",
		Help:      "Time spent on one batch sweep across active clients.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	sweepClients = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "insights",
		Subsystem: "sweep",
		Name:      "clients_total",
		Help:      "Clients processed by batch sweeps, labeled by result.",
	}, []string{"result"})

	lastSweepGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "insights",
		Subsystem: "sweep",
		Name:      "last_completed_timestamp_seconds",
		Help:      "Unix timestamp of the most recently completed sweep.",
	})
)

// Notification outcomes.
const (
	OutcomeCreated    = "created"
	OutcomeSuppressed = "suppressed"
	OutcomeFailed     = "failed"
	OutcomeSkipped    = "skipped"
)

func init() {
	prometheus.MustRegister(insightsCounter, processorFailures, checkFailures, notificationsCounter,
		templateMismatches, triggerDuration, sweepDuration, sweepClients, lastSweepGauge)
}

// RecordInsight counts an insight emitted by a processor.
func RecordInsight(processor, ruleID string) {
	insightsCounter.WithLabelValues(processor, ruleID).Inc()
}

// RecordProcessorFailure counts a processor that contributed nothing due to an error.
func RecordProcessorFailure(processor string) {
	processorFailures.WithLabelValues(processor).Inc()
}

// RecordCheckFailure counts a failed sub-check.
func RecordCheckFailure(processor, check string) {
	checkFailures.WithLabelValues(processor, check).Inc()
}

// RecordNotification counts a notification outcome for a rule.
func RecordNotification(ruleID, outcome string) {
	notificationsCounter.WithLabelValues(ruleID, outcome).Inc()
}

// RecordTemplateMismatch counts a render with unresolved placeholders.
func RecordTemplateMismatch(ruleID string) {
	templateMismatches.WithLabelValues(ruleID).Inc()
}

// ObserveTrigger records the latency of one trigger evaluation.
func ObserveTrigger(eventType, outcome string, elapsed time.Duration) {
	triggerDuration.WithLabelValues(eventType, outcome).Observe(elapsed.Seconds())
}

// ObserveSweep records a completed sweep.
func ObserveSweep(elapsed time.Duration, succeeded, failed int, finishedAt time.Time) {
	sweepDuration.Observe(elapsed.Seconds())
	sweepClients.WithLabelValues("succeeded").Add(float64(succeeded))
	sweepClients.WithLabelValues("failed").Add(float64(failed))
	if !finishedAt.IsZero() {
		lastSweepGauge.Set(float64(finishedAt.Unix()))
	}
}
