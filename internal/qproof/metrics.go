package qproof

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeLabel = "outcome"
	stageLabel   = "stage"

	outcomeCommitted          = "committed"
	outcomeEntropyUnavailable = "entropy_unavailable"
	outcomeOptimizationFailed = "optimization_failed"

	outcomePublished     = "published"
	outcomePublishFailed = "failed"
)

var (
	proofsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qproof",
			Name:      "proofs_total",
			Help:      "number of finished proof runs by outcome",
		},
		[]string{outcomeLabel},
	)

	publishesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qproof",
			Name:      "publishes_total",
			Help:      "number of commitments handed to the downstream publisher by outcome",
		},
		[]string{outcomeLabel},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qproof",
			Name:      "stage_duration_seconds",
			Help:      "time spent in each proof pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{stageLabel},
	)
)

func init() {
	prometheus.MustRegister(proofsTotal, publishesTotal, stageDuration)
}

func observeStage(s stage, start time.Time) {
	stageDuration.WithLabelValues(s.String()).Observe(time.Since(start).Seconds())
}
