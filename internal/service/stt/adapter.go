// Package stt defines the boundary to external speech-to-text providers.
package stt

import (
	"context"
	"errors"
)

// ErrEmptyResult is returned when a provider answers without any transcript
// alternative.
var ErrEmptyResult = errors.New("stt: empty response")

// Entity is a named entity the provider detected in the transcript.
type Entity struct {
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// Result is the structured outcome of transcribing one audio buffer.
type Result struct {
	Transcript string
	Confidence float64
	// SentimentScore is nil when the provider did not score sentiment.
	SentimentScore *float64
	Entities       []Entity
	// RequestID is the provider's own identifier for the call, if any.
	RequestID string
	// Duration of the audio in seconds, if reported.
	Duration float64
}

// Transcriber converts an audio buffer into a Result.
type Transcriber interface {
	// Name returns the provider identifier (for logging/metrics).
	Name() string

	// Transcribe sends audio to the provider. contentType may be empty.
	Transcribe(ctx context.Context, audio []byte, contentType string) (*Result, error)
}

// Client is either an available Transcriber or the reason none could be built.
// Callers must branch on Transcriber's ok result.
type Client struct {
	transcriber Transcriber
	reason      string
}

// Available wraps a working transcriber.
func Available(t Transcriber) Client {
	if t == nil {
		return Unavailable("no transcriber configured")
	}
	return Client{transcriber: t}
}

// Unavailable records why transcription is disabled.
func Unavailable(reason string) Client {
	return Client{reason: reason}
}

// Transcriber returns the wrapped transcriber and whether one is available.
func (c Client) Transcriber() (Transcriber, bool) {
	return c.transcriber, c.transcriber != nil
}

// Reason returns why the client is unavailable, or "" when it is available.
func (c Client) Reason() string {
	return c.reason
}

// Provider returns the provider name, or "none" when unavailable.
func (c Client) Provider() string {
	if c.transcriber == nil {
		return "none"
	}
	return c.transcriber.Name()
}
