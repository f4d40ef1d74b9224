package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// SubmissionMetrics exposes counters/histograms for form submissions and the
// external calls they fan out to.
type SubmissionMetrics struct {
	submissionsTotal    *prometheus.CounterVec
	externalCallsTotal  *prometheus.CounterVec
	externalCallLatency *prometheus.HistogramVec
	uploadedFilesTotal  prometheus.Counter
}

func NewSubmissionMetrics(reg prometheus.Registerer) *SubmissionMetrics {
	m := &SubmissionMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Total form submissions by form and response status",
		}, []string{"form", "status"}),
		externalCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "intake",
			Name:      "external_calls_total",
			Help:      "Total calls to email, payment and storage providers",
		}, []string{"provider", "operation", "outcome"}),
		externalCallLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "landing",
			Subsystem: "intake",
			Name:      "external_call_seconds",
			Help:      "Latency of calls to external providers",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider", "operation"}),
		uploadedFilesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "landing",
			Subsystem: "intake",
			Name:      "uploaded_files_total",
			Help:      "Total files stored through the upload endpoint",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.externalCallsTotal, m.externalCallLatency, m.uploadedFilesTotal)
	return m
}

func (m *SubmissionMetrics) ObserveSubmission(form string, status int) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(form, strconv.Itoa(status)).Inc()
}

func (m *SubmissionMetrics) ObserveExternalCall(provider, operation string, err error, seconds float64) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.externalCallsTotal.WithLabelValues(provider, operation, outcome).Inc()
	m.externalCallLatency.WithLabelValues(provider, operation).Observe(seconds)
}

func (m *SubmissionMetrics) ObserveUploadedFiles(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadedFilesTotal.Add(float64(n))
}
