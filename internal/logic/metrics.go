package logic

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	predictionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_predictions_created_total",
		Help: "Total number of predictions created",
	})

	engineFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sumo_prediction_engine_fallbacks_total",
		Help: "Predictions scored with the neutral fallback, by failing stage",
	}, []string{"stage"})

	scoringDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sumo_prediction_scoring_duration_seconds",
		Help:    "Duration of factor lookups and scoring",
		Buckets: prometheus.DefBuckets,
	})

	quotaDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sumo_quota_denials_total",
		Help: "Free-tier requests denied by the monthly quota",
	}, []string{"operation"})

	resultsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sumo_prediction_results_recorded_total",
		Help: "Prediction outcomes recorded, by correctness",
	}, []string{"outcome"})

	statsRecomputeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sumo_prediction_stats_recompute_failures_total",
		Help: "Stats recomputations that failed after a result was recorded",
	})
)
