package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the issuance lifecycle.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Status transitions by entity type and target status
	Transitions *prometheus.CounterVec

	// Lifecycle operation latency by operation and outcome
	OperationLatency *prometheus.HistogramVec

	// Cards issued by the batch receipt cascade
	CardsIssued prometheus.Counter

	// Status change events by outcome
	EventsPublished *prometheus.CounterVec

	// Status cache lookups by result
	CacheLookups *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "card_issuance_status_transitions_total",
			Help: "Total status transitions recorded in the history ledger",
		}, []string{"entity_type", "status"}),

		OperationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "card_issuance_operation_duration_seconds",
			Help:    "Duration of lifecycle operations including their unit of work",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation", "outcome"}), // outcome: "ok", "error"

		CardsIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "card_issuance_cascade_cards_issued_total",
			Help: "Cards moved to ISSUED by batch receipt",
		}),

		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "card_issuance_events_published_total",
			Help: "Status change events handed to the publisher",
		}, []string{"outcome"}),

		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "card_issuance_status_cache_lookups_total",
			Help: "Status cache lookups by result",
		}, []string{"result"}), // result: "hit", "miss", "error"
	}
}

// IncrementTransition records one ledger row
func (m *Metrics) IncrementTransition(entityType, status string) {
	if m != nil {
		m.Transitions.WithLabelValues(entityType, status).Inc()
	}
}

// ObserveOperation records the duration of an operation started at start
func (m *Metrics) ObserveOperation(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.OperationLatency.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}

// AddCardsIssued records cards issued by a cascade run
func (m *Metrics) AddCardsIssued(n int) {
	if m != nil && n > 0 {
		m.CardsIssued.Add(float64(n))
	}
}

// IncrementEvents records a publish attempt of n events
func (m *Metrics) IncrementEvents(n int, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.EventsPublished.WithLabelValues(outcome).Add(float64(n))
}

// IncrementCacheLookup records a cache lookup result
func (m *Metrics) IncrementCacheLookup(result string) {
	if m != nil {
		m.CacheLookups.WithLabelValues(result).Inc()
	}
}
