package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dialogue metrics
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "symptom_active_sessions",
		Help: "Number of live dialogue sessions",
	})

	TurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symptom_turns_total",
		Help: "Submitted turns by outcome",
	}, []string{"outcome"})

	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symptom_classifications_total",
		Help: "Classification calls by suggestion and status",
	}, []string{"suggestion", "status"})

	ClassificationLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "symptom_classification_latency_seconds",
		Help:    "Latency of the classification client",
		Buckets: prometheus.DefBuckets,
	})

	ClassificationCacheTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symptom_classification_cache_total",
		Help: "Classification cache lookups",
	}, []string{"result"})

	VoiceEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "symptom_voice_events_total",
		Help: "Voice adapter events",
	}, []string{"adapter", "kind"})

	// Infrastructure metrics
	PersistenceFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "symptom_persistence_failures_total",
		Help: "Consultation records that could not be stored",
	})

	DatabaseLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "symptom_database_latency_seconds",
		Help:    "Latency of consultation repository queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

const (
	OutcomeAccepted = "accepted"
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)
