package mock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"distress-audio-triage-service/internal/service/stt"
)

func TestAdapter_New(t *testing.T) {
	adapter := New()
	if adapter == nil {
		t.Fatal("expected non-nil adapter")
	}
	if adapter.Name() != "mock" {
		t.Errorf("expected name 'mock', got %s", adapter.Name())
	}
	if adapter.Calls() != 0 {
		t.Errorf("expected 0 calls initially, got %d", adapter.Calls())
	}
}

func TestAdapter_CyclesThroughUtterances(t *testing.T) {
	adapter := New()
	ctx := context.Background()

	for i := 0; i < len(DefaultUtterances)+1; i++ {
		res, err := adapter.Transcribe(ctx, []byte("audio"), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := DefaultUtterances[i%len(DefaultUtterances)]
		if res.Transcript != want.Transcript {
			t.Errorf("call %d: expected %q, got %q", i, want.Transcript, res.Transcript)
		}
	}

	if adapter.Calls() != len(DefaultUtterances)+1 {
		t.Errorf("expected %d calls, got %d", len(DefaultUtterances)+1, adapter.Calls())
	}
}

func TestAdapter_SentimentCopied(t *testing.T) {
	adapter := New()

	res, err := adapter.Transcribe(context.Background(), nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SentimentScore == nil {
		t.Fatal("expected sentiment on first utterance")
	}

	*res.SentimentScore = 1
	if *DefaultUtterances[0].Sentiment == 1 {
		t.Error("expected result sentiment to be a copy")
	}
}

func TestAdapter_NoUtterances(t *testing.T) {
	adapter := NewWithUtterances(nil)

	_, err := adapter.Transcribe(context.Background(), nil, "")
	if !errors.Is(err, stt.ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", err)
	}
}

func TestAdapter_FailWith(t *testing.T) {
	adapter := New()
	boom := errors.New("service unavailable")

	adapter.FailWith(boom)
	if _, err := adapter.Transcribe(context.Background(), nil, ""); !errors.Is(err, boom) {
		t.Errorf("expected forced error, got %v", err)
	}

	adapter.FailWith(nil)
	if _, err := adapter.Transcribe(context.Background(), nil, ""); err != nil {
		t.Errorf("expected no error after reset, got %v", err)
	}
}

func TestAdapter_CancelledContext(t *testing.T) {
	adapter := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := adapter.Transcribe(ctx, nil, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if adapter.Calls() != 0 {
		t.Errorf("expected cancelled call not to be counted, got %d", adapter.Calls())
	}
}

func TestDefaultUtterances(t *testing.T) {
	if len(DefaultUtterances) != 5 {
		t.Errorf("expected 5 default utterances, got %d", len(DefaultUtterances))
	}

	for i, utt := range DefaultUtterances {
		if utt.Transcript == "" {
			t.Errorf("utterance %d has empty transcript", i)
		}
		if utt.Confidence <= 0 || utt.Confidence > 1 {
			t.Errorf("utterance %d has invalid confidence %f", i, utt.Confidence)
		}
	}
}

func TestAdapter_ThreadSafety(t *testing.T) {
	adapter := New()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = adapter.Transcribe(context.Background(), []byte("audio"), "")
			}
		}()
	}
	wg.Wait()

	if adapter.Calls() != 50 {
		t.Errorf("expected 50 calls, got %d", adapter.Calls())
	}
}
