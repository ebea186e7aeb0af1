package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the application module.
type Metrics struct {
	ApplicationsSubmitted prometheus.Counter
	StatusTransitions     *prometheus.CounterVec
	Decisions             *prometheus.CounterVec
	ScreeningOutcomes     *prometheus.CounterVec
}

// New creates a Metrics instance with all application module metrics
// registered.
func New() *Metrics {
	return &Metrics{
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "regula_applications_submitted_total",
			Help: "Total number of license applications received",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_application_status_transitions_total",
			Help: "Application status transitions by target status",
		}, []string{"to_status"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_application_decisions_total",
			Help: "Terminal application decisions by outcome",
		}, []string{"decision"}),
		ScreeningOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_application_screening_outcomes_total",
			Help: "Sanction screening results by per-party outcome",
		}, []string{"outcome"}),
	}
}

// IncrementSubmitted records an application intake.
func (m *Metrics) IncrementSubmitted() {
	m.ApplicationsSubmitted.Inc()
}

// IncrementTransition records a completed status transition.
func (m *Metrics) IncrementTransition(toStatus string) {
	m.StatusTransitions.WithLabelValues(toStatus).Inc()
}

// IncrementDecision records a terminal decision.
func (m *Metrics) IncrementDecision(decision string) {
	m.Decisions.WithLabelValues(decision).Inc()
}

// IncrementScreening records one screened party's outcome.
func (m *Metrics) IncrementScreening(outcome string) {
	m.ScreeningOutcomes.WithLabelValues(outcome).Inc()
}
