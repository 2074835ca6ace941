package service

import (
	"time"

	"wink-server/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics - счётчики диспетчера. nil *Metrics допустим и ничего не делает.
type Metrics struct {
	outcomes *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers the dispatcher metrics in reg (prometheus.DefaultRegisterer
// in production, a fresh registry in tests).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		outcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "wink_chat_notifications_total",
				Help: "Total number of handled chat-message events, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		duration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "wink_chat_notification_dispatch_seconds",
				Help:    "Time spent handling one chat-message event.",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) observe(outcome model.Outcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome.Kind.String()).Inc()
	m.duration.Observe(elapsed.Seconds())
}
