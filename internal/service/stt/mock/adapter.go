// Package mock provides a mock STT adapter for running without cloud credentials.
// It cycles through canned utterances, some of which contain distress phrases.
package mock

import (
	"context"
	"sync"

	"distress-audio-triage-service/internal/service/stt"
)

// SimulatedUtterance is a canned transcription result.
type SimulatedUtterance struct {
	Transcript string
	Confidence float64
	// Sentiment is nil for utterances without a sentiment score.
	Sentiment *float64
}

func score(f float64) *float64 { return &f }

// DefaultUtterances provides sample utterances for simulation.
var DefaultUtterances = []SimulatedUtterance{
	{
		Transcript: "Help! I've fallen and I can't get up.",
		Confidence: 0.94,
		Sentiment:  score(-0.81),
	},
	{
		Transcript: "I'm fine, just watching the television.",
		Confidence: 0.97,
		Sentiment:  score(0.42),
	},
	{
		Transcript: "Ouch, my hip is in so much pain.",
		Confidence: 0.91,
		Sentiment:  score(-0.64),
	},
	{
		Transcript: "Can you call the doctor tomorrow morning?",
		Confidence: 0.89,
		Sentiment:  score(0.05),
	},
	{
		Transcript: "Thank you very much",
		Confidence: 0.98,
	},
}

// Adapter implements stt.Transcriber with canned responses.
type Adapter struct {
	mu         sync.Mutex
	utterances []SimulatedUtterance
	next       int
	calls      int
	err        error
}

// New creates a mock adapter cycling through DefaultUtterances.
func New() *Adapter {
	return NewWithUtterances(DefaultUtterances)
}

// NewWithUtterances creates a mock adapter cycling through the given utterances.
// With no utterances every call returns stt.ErrEmptyResult.
func NewWithUtterances(utterances []SimulatedUtterance) *Adapter {
	return &Adapter{utterances: append([]SimulatedUtterance(nil), utterances...)}
}

// FailWith makes every subsequent call return err. A nil err restores normal behaviour.
func (a *Adapter) FailWith(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = err
}

// Calls returns how many times Transcribe was invoked.
func (a *Adapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Name implements stt.Transcriber.
func (a *Adapter) Name() string {
	return "mock"
}

// Transcribe returns the next canned utterance.
func (a *Adapter) Transcribe(ctx context.Context, _ []byte, _ string) (*stt.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	if len(a.utterances) == 0 {
		return nil, stt.ErrEmptyResult
	}

	utt := a.utterances[a.next%len(a.utterances)]
	a.next++

	res := &stt.Result{
		Transcript: utt.Transcript,
		Confidence: utt.Confidence,
	}
	if utt.Sentiment != nil {
		s := *utt.Sentiment
		res.SentimentScore = &s
	}
	return res, nil
}
