// Package analysis runs an audio buffer through transcription and distress
// classification, and publishes the resulting verdict.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"distress-audio-triage-service/internal/distress"
	"distress-audio-triage-service/internal/models"
	"distress-audio-triage-service/internal/observability/logging"
	"distress-audio-triage-service/internal/observability/metrics"
	"distress-audio-triage-service/internal/schema"
	"distress-audio-triage-service/internal/service/stt"
)

// Input validation errors. Transports map these to client errors.
var (
	ErrNoAudio       = errors.New("analysis: no audio provided")
	ErrAudioTooLarge = errors.New("analysis: audio exceeds size limit")
)

// Limits bounds accepted audio.
type Limits struct {
	MaxAudioBytes int64
}

// DefaultLimits returns sensible default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAudioBytes: 25 * 1024 * 1024,
	}
}

// Publisher receives verdict events. *events.Publisher satisfies it.
type Publisher interface {
	PublishVerdict(ctx context.Context, key string, event any) error
	PublishAlert(ctx context.Context, key string, event any) error
}

// Request is one audio buffer to analyse.
type Request struct {
	RequestID   string
	Audio       []byte
	ContentType string
	// Source names the transport the request arrived on (http, grpc, ...).
	Source string
}

// Report is the outcome of one analysis.
type Report struct {
	RequestID  string
	Source     string
	Provider   string
	Transcript string
	Confidence float64
	Entities   []stt.Entity
	Verdict    distress.Verdict
	ReceivedAt time.Time
	Duration   time.Duration
}

// Analyzer coordinates the STT client, the classifier and the publisher.
// It holds no per-request state and is safe for concurrent use.
type Analyzer struct {
	client     stt.Client
	classifier *distress.Classifier
	publisher  Publisher
	validator  *schema.Validator
	metrics    *metrics.Metrics
	limits     Limits
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithLimits overrides DefaultLimits.
func WithLimits(l Limits) Option {
	return func(a *Analyzer) { a.limits = l }
}

// WithMetrics overrides metrics.DefaultMetrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Analyzer) { a.metrics = m }
}

// New creates an analyzer. publisher may be nil, in which case verdicts are
// only logged.
func New(client stt.Client, classifier *distress.Classifier, publisher Publisher, opts ...Option) *Analyzer {
	a := &Analyzer{
		client:     client,
		classifier: classifier,
		publisher:  publisher,
		validator:  schema.New(),
		metrics:    metrics.DefaultMetrics,
		limits:     DefaultLimits(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Ready reports whether a transcriber is available, and why not otherwise.
func (a *Analyzer) Ready() (bool, string) {
	_, ok := a.client.Transcriber()
	return ok, a.client.Reason()
}

// Analyze transcribes and classifies req.Audio.
//
// Only invalid input returns an error. Upstream failures never do; they yield
// a report whose verdict is inconclusive and carries the failure reason.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	if req.Source == "" {
		req.Source = "unknown"
	}
	logger := logging.WithRequest(req.RequestID, req.Source).With().
		Str("component", "analysis").
		Logger()

	if err := a.validate(req); err != nil {
		a.metrics.RecordAnalysis(a.client.Provider(), metrics.OutcomeRejected, time.Since(start).Seconds())
		logger.Warn().Err(err).Int("audioBytes", len(req.Audio)).Msg("Audio rejected")
		return nil, err
	}
	a.metrics.RecordAudioReceived(len(req.Audio))

	report := &Report{
		RequestID:  req.RequestID,
		Source:     req.Source,
		Provider:   a.client.Provider(),
		ReceivedAt: start.UTC(),
	}

	transcriber, ok := a.client.Transcriber()
	if !ok {
		reason := "transcription client not initialized: " + a.client.Reason()
		report.Verdict = distress.Inconclusive(distress.FailureUpstreamUnavailable, reason)
		a.metrics.RecordSTTError(report.Provider, string(distress.FailureUpstreamUnavailable))
		logger.Warn().Str("reason", a.client.Reason()).Msg("Transcription unavailable")
	} else {
		a.transcribe(ctx, logger, transcriber, req, report)
	}

	report.Duration = time.Since(start)
	a.record(report)
	a.publish(ctx, logger, report)

	logger.Info().
		Str("provider", report.Provider).
		Bool("distressConfirmed", report.Verdict.Confirmed).
		Strs("detectedKeywords", report.Verdict.MatchedKeywords).
		Float64("sentimentScore", report.Verdict.SentimentScore).
		Bool("elevatedPriority", report.Verdict.ElevatedPriority).
		Str("error", report.Verdict.Error).
		Dur("duration", report.Duration).
		Msg("Audio analysis result")

	return report, nil
}

func (a *Analyzer) validate(req Request) error {
	if len(req.Audio) == 0 {
		return ErrNoAudio
	}
	if a.limits.MaxAudioBytes > 0 && int64(len(req.Audio)) > a.limits.MaxAudioBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrAudioTooLarge, len(req.Audio), a.limits.MaxAudioBytes)
	}
	return nil
}

func (a *Analyzer) transcribe(ctx context.Context, logger zerolog.Logger, t stt.Transcriber, req Request, report *Report) {
	sttStart := time.Now()
	res, err := t.Transcribe(ctx, req.Audio, req.ContentType)
	a.metrics.RecordSTTLatency(t.Name(), time.Since(sttStart).Seconds())

	switch {
	case errors.Is(err, stt.ErrEmptyResult) || (err == nil && res == nil):
		report.Verdict = distress.Inconclusive(distress.FailureEmptyResult, distress.EmptyResponse)
		a.metrics.RecordSTTError(t.Name(), string(distress.FailureEmptyResult))
		logger.Warn().Msg("Transcription response missing results/channels/alternatives")
		return
	case err != nil:
		report.Verdict = distress.Inconclusive(distress.FailureUpstreamUnavailable, err.Error())
		a.metrics.RecordSTTError(t.Name(), string(distress.FailureUpstreamUnavailable))
		logger.Error().Err(err).Msg("Transcription API error")
		return
	}

	report.Transcript = res.Transcript
	report.Confidence = res.Confidence
	report.Entities = res.Entities
	report.Verdict = a.classifier.Classify(res.Transcript, res.SentimentScore)

	if report.Verdict.ElevatedPriority {
		logger.Info().
			Float64("sentimentScore", report.Verdict.SentimentScore).
			Msg("Strong negative sentiment detected with distress keywords")
	}
}

func (a *Analyzer) record(r *Report) {
	outcome := metrics.OutcomeNoDistress
	switch {
	case r.Verdict.Inconclusive():
		outcome = metrics.OutcomeInconclusive
	case r.Verdict.Confirmed:
		outcome = metrics.OutcomeConfirmed
		a.metrics.RecordKeywords(r.Verdict.MatchedKeywords)
	}
	if r.Verdict.ElevatedPriority {
		a.metrics.RecordElevated()
	}
	a.metrics.RecordAnalysis(r.Provider, outcome, r.Duration.Seconds())
}

// publish emits the verdict, and an alert for confirmed distress. Failures are
// logged; they never fail the analysis.
func (a *Analyzer) publish(ctx context.Context, logger zerolog.Logger, r *Report) {
	if a.publisher == nil {
		return
	}
	// The caller may have gone away; the verdict is still worth publishing.
	ctx = context.WithoutCancel(ctx)

	ev := r.Event(models.EventTypeVerdict, time.Now())
	if err := a.validator.Validate(ev); err != nil {
		logger.Error().Err(err).Msg("Verdict event failed validation, not published")
		return
	}
	if err := a.publisher.PublishVerdict(ctx, r.RequestID, ev); err != nil {
		logger.Error().Err(err).Msg("Failed to publish verdict")
	}

	if !r.Verdict.Confirmed {
		return
	}
	ev.EventType = models.EventTypeAlert
	if err := a.publisher.PublishAlert(ctx, r.RequestID, ev); err != nil {
		logger.Error().Err(err).Msg("Failed to publish distress alert")
	}
}

// Response converts the report into the body returned to callers.
func (r *Report) Response() models.AnalysisResponse {
	resp := models.AnalysisResponse{
		RequestID:         r.RequestID,
		Provider:          r.Provider,
		DistressConfirmed: r.Verdict.Confirmed,
		Transcript:        r.Transcript,
		Confidence:        r.Confidence,
		DetectedKeywords:  r.Verdict.MatchedKeywords,
		SentimentScore:    r.Verdict.SentimentScore,
		ElevatedPriority:  r.Verdict.ElevatedPriority,
		Error:             r.Verdict.Error,
	}
	if resp.DetectedKeywords == nil {
		resp.DetectedKeywords = []string{}
	}
	for _, e := range r.Entities {
		resp.Entities = append(resp.Entities, models.Entity(e))
	}
	return resp
}

// Event converts the report into a Kafka event of the given type.
func (r *Report) Event(eventType string, at time.Time) models.VerdictEvent {
	keywords := r.Verdict.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}
	return models.VerdictEvent{
		EventType:         eventType,
		RequestID:         r.RequestID,
		Source:            r.Source,
		Provider:          r.Provider,
		Timestamp:         at.UnixMilli(),
		DistressConfirmed: r.Verdict.Confirmed,
		DetectedKeywords:  keywords,
		Transcript:        r.Transcript,
		Confidence:        r.Confidence,
		SentimentScore:    r.Verdict.SentimentScore,
		ElevatedPriority:  r.Verdict.ElevatedPriority,
		Failure:           string(r.Verdict.Failure),
		Error:             r.Verdict.Error,
	}
}
