package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by scoring and embedding counters.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
	OutcomeRejected  = "rejected"
	OutcomeTransient = "transient"
)

var (
	RestaurantsScored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishdash_restaurants_scored_total",
			Help: "Restaurants processed by the scoring batch, by dimension and outcome",
		},
		[]string{"dimension", "outcome"},
	)

	ScoringRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dishdash_scoring_run_duration_seconds",
			Help:    "Wall time of a full scoring batch run",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800, 3600},
		},
		[]string{"dimension", "state"},
	)

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishdash_embedding_requests_total",
			Help: "Calls made to the embedding provider, by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)

	EmbeddingCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dishdash_embedding_cache_total",
			Help: "Embedding cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "dishdash_circuit_breaker_state",
			Help: "Embedding circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
