package schema

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"distress-audio-triage-service/internal/models"
)

func validEvent() models.VerdictEvent {
	return models.VerdictEvent{
		EventType:         models.EventTypeVerdict,
		RequestID:         "req-1",
		Source:            "http",
		Provider:          "mock",
		Timestamp:         1700000000000,
		DistressConfirmed: true,
		DetectedKeywords:  []string{"help"},
		Transcript:        "help",
		Confidence:        0.9,
		SentimentScore:    -0.6,
		ElevatedPriority:  true,
	}
}

func TestValidate_Valid(t *testing.T) {
	v := New()

	if err := v.Validate(validEvent()); err != nil {
		t.Errorf("expected valid event, got %v", err)
	}

	inconclusive := validEvent()
	inconclusive.DistressConfirmed = false
	inconclusive.DetectedKeywords = []string{}
	inconclusive.Failure = "empty_result"
	inconclusive.Error = "Empty response"
	if err := v.Validate(inconclusive); err != nil {
		t.Errorf("expected valid inconclusive event, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *models.VerdictEvent)
	}{
		{"missing request id", func(e *models.VerdictEvent) { e.RequestID = "" }},
		{"unknown event type", func(e *models.VerdictEvent) { e.EventType = "distress.other" }},
		{"zero timestamp", func(e *models.VerdictEvent) { e.Timestamp = 0 }},
		{"confidence above one", func(e *models.VerdictEvent) { e.Confidence = 1.5 }},
		{"sentiment below minus one", func(e *models.VerdictEvent) { e.SentimentScore = -2 }},
		{"confirmed without keywords", func(e *models.VerdictEvent) { e.DetectedKeywords = nil }},
		{"blank keyword", func(e *models.VerdictEvent) { e.DetectedKeywords = []string{""} }},
		{"unknown failure", func(e *models.VerdictEvent) { e.Failure = "timeout"; e.Error = "x" }},
		{"failure without error", func(e *models.VerdictEvent) { e.Failure = "empty_result" }},
	}

	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)

			err := v.Validate(e)
			if err == nil {
				t.Fatal("expected validation error")
			}
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("expected wrapped ValidationErrors, got %T", err)
			}
		})
	}
}
