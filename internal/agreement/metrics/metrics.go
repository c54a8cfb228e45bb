package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the agreement module.
type Metrics struct {
	// Lifecycle transitions by resulting status
	LifecycleTransitions *prometheus.CounterVec

	// Compliance check outcomes: compliant / non_compliant
	ComplianceOutcome *prometheus.CounterVec

	// Number of blocking errors observed per compliance check
	ComplianceErrors prometheus.Histogram

	// Draft creation latency including match and template loads
	CreateDraftLatency prometheus.Histogram
}

// New creates a Metrics instance with all agreement module metrics registered.
func New() *Metrics {
	return &Metrics{
		LifecycleTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nestly_agreement_lifecycle_transitions_total",
			Help: "Total agreement lifecycle transitions by resulting status",
		}, []string{"status"}),

		ComplianceOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nestly_agreement_compliance_checks_total",
			Help: "Total compliance checks by outcome",
		}, []string{"outcome"}),

		ComplianceErrors: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nestly_agreement_compliance_errors",
			Help:    "Blocking errors per compliance check",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		}),

		CreateDraftLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "nestly_agreement_create_draft_duration_seconds",
			Help:    "Duration of draft creation including match and template loads",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementTransition records a lifecycle transition.
func (m *Metrics) IncrementTransition(status string) {
	if m != nil {
		m.LifecycleTransitions.WithLabelValues(status).Inc()
	}
}

// ObserveComplianceCheck records a check outcome and its error count.
func (m *Metrics) ObserveComplianceCheck(compliant bool, errorCount int) {
	if m == nil {
		return
	}
	outcome := "compliant"
	if !compliant {
		outcome = "non_compliant"
	}
	m.ComplianceOutcome.WithLabelValues(outcome).Inc()
	m.ComplianceErrors.Observe(float64(errorCount))
}

// ObserveCreateDraftLatency records draft creation duration.
func (m *Metrics) ObserveCreateDraftLatency(d time.Duration) {
	if m != nil {
		m.CreateDraftLatency.Observe(d.Seconds())
	}
}
