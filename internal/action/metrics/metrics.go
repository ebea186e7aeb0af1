package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the license action module.
type Metrics struct {
	ActionsCreated *prometheus.CounterVec
	Decisions      *prometheus.CounterVec
}

// New creates a Metrics instance with all action module metrics registered.
func New() *Metrics {
	return &Metrics{
		ActionsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_license_actions_created_total",
			Help: "License actions drafted by action type",
		}, []string{"action_type"}),
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "regula_license_action_decisions_total",
			Help: "License action decisions by action type and terminal status",
		}, []string{"action_type", "status"}),
	}
}

// IncrementCreated records a drafted action.
func (m *Metrics) IncrementCreated(actionType string) {
	m.ActionsCreated.WithLabelValues(actionType).Inc()
}

// IncrementDecision records a decided action.
func (m *Metrics) IncrementDecision(actionType, status string) {
	m.Decisions.WithLabelValues(actionType, status).Inc()
}
