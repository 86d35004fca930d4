package observability

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Registry = prometheus.NewRegistry()

	decisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "decisions_total",
			Help:      "Policy decisions by outcome",
		},
		[]string{"outcome"},
	)

	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "actions_total",
			Help:      "Moderation actions sent to the Bot API",
		},
		[]string{"action", "status"},
	)

	evaluationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "warden",
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent evaluating a message against chat policy",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		decisionsTotal,
		actionsTotal,
		evaluationDuration,
	)
}

func RecordDecision(outcome string) {
	decisionsTotal.WithLabelValues(outcome).Inc()
}

func RecordAction(action, status string) {
	actionsTotal.WithLabelValues(action, status).Inc()
}

func ObserveEvaluation(d time.Duration) {
	evaluationDuration.Observe(d.Seconds())
}

// RegisterTrackedKeys exposes the number of rate windows held in memory.
func RegisterTrackedKeys(count func() int) error {
	err := Registry.Register(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "warden",
			Name:      "ratelimit_tracked_keys",
			Help:      "Chat members with a live rate window",
		},
		func() float64 { return float64(count()) },
	))
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		return nil
	}
	return err
}
