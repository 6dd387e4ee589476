// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "distress_triage"

// Outcome labels for analyses.
const (
	OutcomeConfirmed    = "confirmed"
	OutcomeNoDistress   = "no_distress"
	OutcomeInconclusive = "inconclusive"
	OutcomeRejected     = "rejected"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	ElevatedTotal    prometheus.Counter
	KeywordMatches   *prometheus.CounterVec

	// Audio metrics
	AudioBytesReceived prometheus.Counter

	// STT metrics
	STTLatency *prometheus.HistogramVec
	STTErrors  *prometheus.CounterVec

	// Kafka publish metrics
	KafkaPublishTotal   *prometheus.CounterVec
	KafkaPublishErrors  *prometheus.CounterVec
	KafkaPublishLatency *prometheus.HistogramVec

	// Transport metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance registered with the default registry.
var DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)

// NewMetrics creates all metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Total number of audio analyses by outcome",
		}, []string{"provider", "outcome"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end duration of an audio analysis in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		ElevatedTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "elevated_priority_total",
			Help:      "Total number of confirmed verdicts with strong negative sentiment",
		}),
		KeywordMatches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keyword_matches_total",
			Help:      "Total number of distress keyword matches",
		}, []string{"keyword"}),

		AudioBytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total audio bytes received",
		}),

		STTLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stt_latency_seconds",
			Help:      "Speech-to-text request latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"provider"}),
		STTErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stt_errors_total",
			Help:      "Total number of STT errors",
		}, []string{"provider", "error_type"}),

		KafkaPublishTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_total",
			Help:      "Total number of Kafka messages published",
		}, []string{"topic", "event_type"}),
		KafkaPublishErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kafka_publish_errors_total",
			Help:      "Total number of Kafka publish errors",
		}, []string{"topic", "event_type"}),
		KafkaPublishLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kafka_publish_latency_seconds",
			Help:      "Kafka publish latency in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"topic"}),

		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of transport requests",
		}, []string{"transport", "route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Transport request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "route"}),
	}
}

// RecordAnalysis records a completed analysis.
func (m *Metrics) RecordAnalysis(provider, outcome string, durationSeconds float64) {
	m.AnalysesTotal.WithLabelValues(provider, outcome).Inc()
	m.AnalysisDuration.Observe(durationSeconds)
}

// RecordKeywords records each matched keyword.
func (m *Metrics) RecordKeywords(keywords []string) {
	for _, k := range keywords {
		m.KeywordMatches.WithLabelValues(k).Inc()
	}
}

// RecordElevated records a verdict flagged as elevated priority.
func (m *Metrics) RecordElevated() {
	m.ElevatedTotal.Inc()
}

// RecordAudioReceived records audio bytes received.
func (m *Metrics) RecordAudioReceived(bytes int) {
	m.AudioBytesReceived.Add(float64(bytes))
}

// RecordSTTLatency records the latency of a provider call.
func (m *Metrics) RecordSTTLatency(provider string, seconds float64) {
	m.STTLatency.WithLabelValues(provider).Observe(seconds)
}

// RecordSTTError records an STT error.
func (m *Metrics) RecordSTTError(provider, errorType string) {
	m.STTErrors.WithLabelValues(provider, errorType).Inc()
}

// RecordKafkaPublish records a Kafka publish attempt.
func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error, latencySeconds float64) {
	m.KafkaPublishTotal.WithLabelValues(topic, eventType).Inc()
	m.KafkaPublishLatency.WithLabelValues(topic).Observe(latencySeconds)
	if err != nil {
		m.KafkaPublishErrors.WithLabelValues(topic, eventType).Inc()
	}
}

// RecordRequest records a transport request.
func (m *Metrics) RecordRequest(transport, route, code string, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(transport, route, code).Inc()
	m.RequestDuration.WithLabelValues(transport, route).Observe(durationSeconds)
}
