package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// FunnelMetrics records lead lifecycle, payment group and redemption activity.
type FunnelMetrics struct {
	transitions *prometheus.CounterVec
	groups      *prometheus.CounterVec
	groupLeads  prometheus.Histogram
	redemptions *prometheus.CounterVec
}

// NewFunnelMetrics registers the funnel collectors on the provided registerer.
// A nil registerer yields a recorder that drops every observation.
func NewFunnelMetrics(reg prometheus.Registerer) *FunnelMetrics {
	if reg == nil {
		return &FunnelMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lead_status_transitions_total",
		Help: "Lead status changes applied through the state machine.",
	}, []string{"from", "to"})
	groups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_group_operations_total",
		Help: "Payment group operations by target status and outcome.",
	}, []string{"status", "outcome"})
	groupLeads := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_group_leads",
		Help:    "Number of leads closed by a committed payment group operation.",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
	})
	redemptions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bonus_redemptions_total",
		Help: "Bonus redemption attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(transitions, groups, groupLeads, redemptions)
	return &FunnelMetrics{
		transitions: transitions,
		groups:      groups,
		groupLeads:  groupLeads,
		redemptions: redemptions,
	}
}

// IncTransition counts a committed lead status change.
func (m *FunnelMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// ObserveGroup records a payment group attempt; leads is only observed on success.
func (m *FunnelMetrics) ObserveGroup(status string, leads int, err error) {
	if m == nil || m.groups == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.groups.WithLabelValues(normalizeLabel(status), outcome).Inc()
	if err == nil && m.groupLeads != nil {
		m.groupLeads.Observe(float64(leads))
	}
}

// ObserveRedemption counts a redemption attempt.
func (m *FunnelMetrics) ObserveRedemption(err error) {
	if m == nil || m.redemptions == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.redemptions.WithLabelValues(outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
