package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

func TestRecordAnalysis(t *testing.T) {
	m := newTestMetrics()

	m.RecordAnalysis("mock", OutcomeConfirmed, 0.2)
	m.RecordAnalysis("mock", OutcomeConfirmed, 0.3)
	m.RecordAnalysis("mock", OutcomeInconclusive, 0.1)

	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("mock", OutcomeConfirmed)); got != 2 {
		t.Errorf("expected 2 confirmed analyses, got %v", got)
	}
	if got := testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("mock", OutcomeInconclusive)); got != 1 {
		t.Errorf("expected 1 inconclusive analysis, got %v", got)
	}
}

func TestRecordKeywords(t *testing.T) {
	m := newTestMetrics()

	m.RecordKeywords([]string{"help", "fall", "help"})

	if got := testutil.ToFloat64(m.KeywordMatches.WithLabelValues("help")); got != 2 {
		t.Errorf("expected 2 'help' matches, got %v", got)
	}
	if got := testutil.ToFloat64(m.KeywordMatches.WithLabelValues("fall")); got != 1 {
		t.Errorf("expected 1 'fall' match, got %v", got)
	}
}

func TestRecordKafkaPublish(t *testing.T) {
	m := newTestMetrics()

	m.RecordKafkaPublish("distress.verdict", "verdict", nil, 0.01)
	m.RecordKafkaPublish("distress.verdict", "verdict", errors.New("broker down"), 0.02)

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("distress.verdict", "verdict")); got != 2 {
		t.Errorf("expected 2 publishes, got %v", got)
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("distress.verdict", "verdict")); got != 1 {
		t.Errorf("expected 1 publish error, got %v", got)
	}
}

func TestRecordCounters(t *testing.T) {
	m := newTestMetrics()

	m.RecordAudioReceived(1024)
	m.RecordElevated()
	m.RecordSTTError("deepgram", "upstream_unavailable")
	m.RecordRequest("http", "/analyze_audio_distress", "200", 0.5)

	if got := testutil.ToFloat64(m.AudioBytesReceived); got != 1024 {
		t.Errorf("expected 1024 bytes, got %v", got)
	}
	if got := testutil.ToFloat64(m.ElevatedTotal); got != 1 {
		t.Errorf("expected 1 elevated verdict, got %v", got)
	}
	if got := testutil.ToFloat64(m.STTErrors.WithLabelValues("deepgram", "upstream_unavailable")); got != 1 {
		t.Errorf("expected 1 STT error, got %v", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("http", "/analyze_audio_distress", "200")); got != 1 {
		t.Errorf("expected 1 request, got %v", got)
	}
}

func TestDefaultMetrics(t *testing.T) {
	if DefaultMetrics == nil {
		t.Fatal("expected default metrics to be initialized")
	}
}
