package metrics

import "github.com/prometheus/client_golang/prometheus"

// TriageMetrics exposes counters/histograms for the image triage pipeline.
type TriageMetrics struct {
	predictionsTotal *prometheus.CounterVec
	stepFailures     *prometheus.CounterVec
	hospitalLatency  prometheus.Histogram
}

func NewTriageMetrics(reg prometheus.Registerer) *TriageMetrics {
	m := &TriageMetrics{
		predictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dermassist",
			Subsystem: "triage",
			Name:      "predictions_total",
			Help:      "Total classified images",
		}, []string{"label", "actionable"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dermassist",
			Subsystem: "triage",
			Name:      "step_failures_total",
			Help:      "Total degraded pipeline steps",
		}, []string{"step"}),
		hospitalLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dermassist",
			Subsystem: "triage",
			Name:      "hospital_booking_latency_seconds",
			Help:      "Latency of hospital booking calls",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.predictionsTotal, m.stepFailures, m.hospitalLatency)
	return m
}

func (m *TriageMetrics) ObservePrediction(label string, actionable bool) {
	if m == nil {
		return
	}
	flag := "false"
	if actionable {
		flag = "true"
	}
	m.predictionsTotal.WithLabelValues(label, flag).Inc()
}

func (m *TriageMetrics) ObserveStepFailure(step string) {
	if m == nil {
		return
	}
	m.stepFailures.WithLabelValues(step).Inc()
}

func (m *TriageMetrics) ObserveHospitalLatency(seconds float64) {
	if m == nil {
		return
	}
	m.hospitalLatency.Observe(seconds)
}
