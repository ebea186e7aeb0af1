package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the license module.
type Metrics struct {
	LicensesIssued    prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	RenewalsInitiated prometheus.Counter
	RenewalDecisions  *prometheus.CounterVec
}

// New creates a Metrics instance with all license module metrics registered.
func New() *Metrics {
	return &Metrics{
		LicensesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "regula_licenses_issued_total",
			Help: "Total number of licenses issued",
		}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_license_status_transitions_total",
			Help: "License status transitions by target status",
		}, []string{"to_status"}),
		RenewalsInitiated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "regula_license_renewals_initiated_total",
			Help: "Total number of renewal cycles opened",
		}),
		RenewalDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_license_renewal_decisions_total",
			Help: "Renewal decisions by outcome",
		}, []string{"decision"}),
	}
}

// IncrementIssued records a successful license issuance.
func (m *Metrics) IncrementIssued() {
	m.LicensesIssued.Inc()
}

// IncrementTransition records a completed status transition.
func (m *Metrics) IncrementTransition(toStatus string) {
	m.StatusTransitions.WithLabelValues(toStatus).Inc()
}

// IncrementRenewalInitiated records a renewal cycle being opened.
func (m *Metrics) IncrementRenewalInitiated() {
	m.RenewalsInitiated.Inc()
}

// IncrementRenewalDecision records a renewal decision.
func (m *Metrics) IncrementRenewalDecision(decision string) {
	m.RenewalDecisions.WithLabelValues(decision).Inc()
}
