package metrics

import (
	"strconv"

	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	prometheus "github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

type LedgerMetrics struct {
	PollCounter       metrics.Gauge
	PollsCreated      metrics.Counter
	ResponsesRecorded metrics.Counter
	PollsSealed       metrics.Counter
	RejectedTotal     metrics.Counter
}

func (m *LedgerMetrics) SetPollCounter(counter uint64) {
	m.PollCounter.Set(float64(counter))
}

func (m *LedgerMetrics) AddPollCreated() {
	m.PollsCreated.Add(1)
}

func (m *LedgerMetrics) AddResponseRecorded() {
	m.ResponsesRecorded.Add(1)
}

func (m *LedgerMetrics) AddPollSealed(decided bool) {
	choice := ChoiceUndecided
	if decided {
		choice = ChoiceDecided
	}
	m.PollsSealed.With(LedgerChoice, choice).Add(1)
}

func (m *LedgerMetrics) AddRejected(operation string, code uint) {
	m.RejectedTotal.With(
		LedgerOperation, operation,
		LedgerCode, strconv.FormatUint(uint64(code), 10),
	).Add(1)
}

func PromLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		PollCounter: prometheus.NewGaugeFrom(stdprometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "poll_counter",
			Help:      "Last assigned poll id.",
		}, []string{}),
		PollsCreated: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "polls_created_total",
			Help:      "Number of created polls.",
		}, []string{}),
		ResponsesRecorded: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "responses_recorded_total",
			Help:      "Number of recorded responses.",
		}, []string{}),
		PollsSealed: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "polls_sealed_total",
			Help:      "Number of seals.",
		}, []string{LedgerChoice}),
		RejectedTotal: prometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: LedgerSubsystem,
			Name:      "rejected_total",
			Help:      "Number of rejected operations.",
		}, []string{LedgerOperation, LedgerCode}),
	}
}

func NopLedgerMetrics() *LedgerMetrics {
	return &LedgerMetrics{
		PollCounter:       discard.NewGauge(),
		PollsCreated:      discard.NewCounter(),
		ResponsesRecorded: discard.NewCounter(),
		PollsSealed:       discard.NewCounter(),
		RejectedTotal:     discard.NewCounter(),
	}
}
