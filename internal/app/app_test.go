package app

import (
	"context"
	"testing"

	"distress-audio-triage-service/internal/config"
	"distress-audio-triage-service/internal/distress"
	"distress-audio-triage-service/internal/service/analysis"
)

func testConfig(provider string) *config.Configuration {
	return &config.Configuration{
		STT: config.STTConfig{Provider: provider},
		Distress: config.DistressConfig{
			Keywords:           distress.DefaultKeywords,
			SentimentThreshold: distress.DefaultSentimentThreshold,
		},
		Limits:        config.LimitsConfig{MaxAudioBytes: 1024},
		Observability: config.ObservabilityConfig{LogLevel: "error", LogFormat: "json"},
	}
}

func TestNew_MockProvider(t *testing.T) {
	a := New(context.Background(), testConfig("mock"))
	if err := a.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer a.Shutdown()

	if ok, reason := a.Ready(); !ok {
		t.Fatalf("expected ready, got reason %q", reason)
	}
	if a.Publisher.Enabled() {
		t.Error("expected Kafka publisher disabled")
	}

	report, err := a.Analyzer.Analyze(context.Background(), analysis.Request{Audio: []byte("audio")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.Verdict.Confirmed {
		t.Error("expected first mock utterance to confirm distress")
	}
}

func TestNew_UnavailableProvider(t *testing.T) {
	a := New(context.Background(), testConfig("deepgram")) // no API key
	defer a.Shutdown()

	ok, reason := a.Ready()
	if ok {
		t.Fatal("expected not ready without API key")
	}
	if reason == "" {
		t.Error("expected a reason")
	}
}

func TestNew_LimitsApplied(t *testing.T) {
	a := New(context.Background(), testConfig("mock"))
	defer a.Shutdown()

	_, err := a.Analyzer.Analyze(context.Background(), analysis.Request{Audio: make([]byte, 2048)})
	if err == nil {
		t.Fatal("expected audio over the configured limit to be rejected")
	}
}
