// Package models defines the data structures exchanged with clients and the event bus.
package models

// Event types published to Kafka.
const (
	EventTypeVerdict = "distress.verdict"
	EventTypeAlert   = "distress.alert"
)

// AnalysisResponse is the body returned to HTTP and gRPC callers.
// A non-empty Error means the analysis was inconclusive.
type AnalysisResponse struct {
	RequestID         string   `json:"request_id"`
	Provider          string   `json:"provider"`
	DistressConfirmed bool     `json:"distress_confirmed"`
	Transcript        string   `json:"transcript"`
	Confidence        float64  `json:"confidence"`
	DetectedKeywords  []string `json:"detected_keywords"`
	SentimentScore    float64  `json:"sentiment_score"`
	ElevatedPriority  bool     `json:"elevated_priority"`
	Entities          []Entity `json:"entities,omitempty"`
	Error             string   `json:"error,omitempty"`
}

// Entity is a named entity detected in the transcript.
type Entity struct {
	Label      string  `json:"label"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// VerdictEvent is published for every analysis; confirmed ones are also
// published as alerts.
type VerdictEvent struct {
	EventType         string   `json:"eventType" validate:"required,oneof=distress.verdict distress.alert"`
	RequestID         string   `json:"requestId" validate:"required"`
	Source            string   `json:"source" validate:"required"`
	Provider          string   `json:"provider" validate:"required"`
	Timestamp         int64    `json:"timestamp" validate:"gt=0"`
	DistressConfirmed bool     `json:"distressConfirmed"`
	DetectedKeywords  []string `json:"detectedKeywords" validate:"required_if=DistressConfirmed true,dive,required"`
	Transcript        string   `json:"transcript"`
	Confidence        float64  `json:"confidence" validate:"gte=0,lte=1"`
	SentimentScore    float64  `json:"sentimentScore" validate:"gte=-1,lte=1"`
	ElevatedPriority  bool     `json:"elevatedPriority"`
	Failure           string   `json:"failure,omitempty" validate:"omitempty,oneof=upstream_unavailable empty_result"`
	Error             string   `json:"error,omitempty" validate:"required_with=Failure"`
}
