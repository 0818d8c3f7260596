package metrics

import (
	"time"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type SequencerMetrics struct {
	QueueSize            metrics.Gauge
	ApplyDurationSeconds metrics.Histogram
}

func (m *SequencerMetrics) AddQueueSize(delta int) {
	m.QueueSize.Add(float64(delta))
}

func (m *SequencerMetrics) ObserveApplyDuration(begin time.Time, operation string) {
	m.ApplyDurationSeconds.With(LedgerOperation, operation).Observe(time.Since(begin).Seconds())
}

func PromSequencerMetrics() *SequencerMetrics {
	return &SequencerMetrics{
		QueueSize: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: SequencerSubsystem,
			Name:      "queue_size",
			Help:      "Operations waiting to be applied.",
		}, []string{}),
		ApplyDurationSeconds: prometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: Namespace,
			Subsystem: SequencerSubsystem,
			Name:      "apply_duration_seconds",
			Help:      "Time applying one operation.",
		}, []string{LedgerOperation}),
	}
}

func NopSequencerMetrics() *SequencerMetrics {
	return &SequencerMetrics{
		QueueSize:            discard.NewGauge(),
		ApplyDurationSeconds: discard.NewHistogram(),
	}
}
