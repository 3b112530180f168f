package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	CandlesEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsivolume_candles_evaluated_total",
			Help: "Total number of candles passed through the strategy (by pair).",
		},
		[]string{"pair"},
	)

	EntrySignals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsivolume_entry_signals_total",
			Help: "Total number of long entry signals raised (by pair).",
		},
		[]string{"pair"},
	)

	InsufficientHistory = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rsivolume_insufficient_history_total",
			Help: "Evaluations where the series was shorter than the indicator warmup (by pair).",
		},
		[]string{"pair"},
	)

	EvaluationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rsivolume_evaluation_seconds",
			Help:    "Time spent evaluating one pair.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		},
	)
)

func init() {
	prometheus.MustRegister(CandlesEvaluated, EntrySignals, InsufficientHistory, EvaluationSeconds)
}

// ObserveEvaluation records the outcome of evaluating one pair.
func ObserveEvaluation(pair string, candles, entries int, insufficient bool, took time.Duration) {
	CandlesEvaluated.WithLabelValues(pair).Add(float64(candles))
	EntrySignals.WithLabelValues(pair).Add(float64(entries))
	if insufficient {
		InsufficientHistory.WithLabelValues(pair).Inc()
	}
	EvaluationSeconds.Observe(took.Seconds())
}
