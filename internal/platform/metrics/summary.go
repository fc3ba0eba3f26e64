// Package metrics records summary pipeline metrics with Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SummaryMetrics implements usecase.MetricsRecorder using Prometheus.
type SummaryMetrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	sections *prometheus.CounterVec
}

// NewSummaryMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewSummaryMetrics(reg prometheus.Registerer) (*SummaryMetrics, error) {
	m := &SummaryMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transcript_summary_requests_total",
			Help: "Summary requests by input source and outcome",
		}, []string{"source", "outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "transcript_summary_generation_duration_seconds",
			Help:    "Time taken by the generative model call",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transcript_summary_sections_total",
			Help: "Categories found or missing in model replies",
		}, []string{"category", "detected"}),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.sections} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordRequest counts one request outcome.
func (m *SummaryMetrics) RecordRequest(source, outcome string) {
	m.requests.WithLabelValues(source, outcome).Inc()
}

// RecordDuration observes a model call duration.
func (m *SummaryMetrics) RecordDuration(d time.Duration) {
	m.duration.Observe(d.Seconds())
}

// RecordSection counts whether a category marker was found in the reply.
func (m *SummaryMetrics) RecordSection(category string, detected bool) {
	m.sections.WithLabelValues(category, strconv.FormatBool(detected)).Inc()
}
