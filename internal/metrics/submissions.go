// Package metrics records client-side submission metrics on a dedicated
// Prometheus registry.
package metrics

import (
	"sort"
	"time"

	"github.com/agbru/lcmform/internal/form"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "lcmform_client"

// trackedOutcomes are pre-registered so that every series exists from the start.
var trackedOutcomes = []form.Outcome{
	form.OutcomeRejected,
	form.OutcomeSuccess,
	form.OutcomeEndpointError,
	form.OutcomeTransportError,
}

// SubmissionMetrics implements form.Recorder with Prometheus collectors.
type SubmissionMetrics struct {
	registry    *prometheus.Registry
	submissions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

var _ form.Recorder = (*SubmissionMetrics)(nil)

// NewSubmissionMetrics creates the collectors on a fresh registry.
func NewSubmissionMetrics() *SubmissionMetrics {
	m := &SubmissionMetrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Form submission attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from request start to settled outcome.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.submissions, m.duration)
	for _, o := range trackedOutcomes {
		m.submissions.WithLabelValues(o.String())
	}
	return m
}

// ObserveSubmission counts the attempt and, when a request was made, records
// its duration.
func (m *SubmissionMetrics) ObserveSubmission(outcome form.Outcome, elapsed time.Duration) {
	label := outcome.String()
	m.submissions.WithLabelValues(label).Inc()
	if outcome == form.OutcomeRejected || outcome == form.OutcomeBusy || outcome == form.OutcomeIgnored {
		return
	}
	m.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// Gatherer exposes the registry for export.
func (m *SubmissionMetrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current values in the Prometheus text format,
// replacing path atomically.
func (m *SubmissionMetrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// OutcomeCount is one row of Summary.
type OutcomeCount struct {
	Outcome string
	Count   uint64
}

// Summary returns the submission counts by outcome, sorted by outcome name.
func (m *SubmissionMetrics) Summary() ([]OutcomeCount, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	var rows []OutcomeCount
	for _, mf := range families {
		if mf.GetName() != namespace+"_submissions_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			row := OutcomeCount{Count: uint64(metric.GetCounter().GetValue())}
			for _, lp := range metric.GetLabel() {
				if lp.GetName() == "outcome" {
					row.Outcome = lp.GetValue()
				}
			}
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Outcome < rows[j].Outcome })
	return rows, nil
}
