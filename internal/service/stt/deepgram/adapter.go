// Package deepgram provides a Deepgram pre-recorded transcription adapter.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"distress-audio-triage-service/internal/service/stt"
)

// DefaultBaseURL is the Deepgram pre-recorded listen endpoint.
const DefaultBaseURL = "https://api.deepgram.com/v1/listen"

// maxErrorBody caps how much of a failed response body is carried in errors.
const maxErrorBody = 512

// ErrMissingAPIKey is returned by New when no API key is configured.
var ErrMissingAPIKey = errors.New("deepgram: API key not configured")

// Config holds Deepgram request options.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	SmartFormat    bool
	Sentiment      bool
	DetectEntities bool
	Punctuate      bool
	Timeout        time.Duration
}

// DefaultConfig returns the options used for distress analysis.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		Model:          "nova-2",
		Language:       "en",
		SmartFormat:    true,
		Sentiment:      true,
		DetectEntities: true,
		Punctuate:      true,
		Timeout:        60 * time.Second,
	}
}

// Adapter implements stt.Transcriber against the Deepgram REST API.
type Adapter struct {
	cfg        Config
	endpoint   *url.URL
	httpClient *http.Client
	logger     zerolog.Logger
}

// New creates a Deepgram adapter. It fails when the API key is missing or the
// base URL does not parse.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	endpoint, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("deepgram: parse base URL: %w", err)
	}

	return &Adapter{
		cfg:        cfg,
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log.With().Str("component", "stt").Str("sttProvider", "deepgram").Logger(),
	}, nil
}

// Name implements stt.Transcriber.
func (a *Adapter) Name() string {
	return "deepgram"
}

// Transcribe posts audio to Deepgram and extracts the first alternative of the
// first channel together with the average sentiment score and entities.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, contentType string) (*stt.Result, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.requestURL(), bytes.NewReader(audio))
	if err != nil {
		return nil, fmt.Errorf("deepgram: build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+a.cfg.APIKey)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deepgram: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("deepgram: read response: %w", err)
	}

	a.logger.Debug().
		Int("status", resp.StatusCode).
		Int("audioBytes", len(audio)).
		Dur("latency", time.Since(start)).
		Msg("Deepgram request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}

	var dg response
	if err := json.Unmarshal(body, &dg); err != nil {
		return nil, fmt.Errorf("deepgram: decode response: %w", err)
	}
	return dg.toResult()
}

func (a *Adapter) requestURL() string {
	u := *a.endpoint
	q := u.Query()
	if a.cfg.Model != "" {
		q.Set("model", a.cfg.Model)
	}
	if a.cfg.Language != "" {
		q.Set("language", a.cfg.Language)
	}
	q.Set("smart_format", strconv.FormatBool(a.cfg.SmartFormat))
	q.Set("sentiment", strconv.FormatBool(a.cfg.Sentiment))
	q.Set("detect_entities", strconv.FormatBool(a.cfg.DetectEntities))
	q.Set("punctuate", strconv.FormatBool(a.cfg.Punctuate))
	u.RawQuery = q.Encode()
	return u.String()
}

// StatusError is returned for non-200 Deepgram responses.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("deepgram: request failed with status %d: %s", e.StatusCode, e.Body)
}

// response is the subset of the Deepgram listen response this service reads.
type response struct {
	Metadata struct {
		RequestID string  `json:"request_id"`
		Duration  float64 `json:"duration"`
	} `json:"metadata"`
	Results *struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string  `json:"transcript"`
				Confidence float64 `json:"confidence"`
				Entities   []struct {
					Label      string  `json:"label"`
					Value      string  `json:"value"`
					Confidence float64 `json:"confidence"`
				} `json:"entities"`
			} `json:"alternatives"`
		} `json:"channels"`
		Sentiments *struct {
			Average *struct {
				Sentiment      string   `json:"sentiment"`
				SentimentScore *float64 `json:"sentiment_score"`
			} `json:"average"`
		} `json:"sentiments"`
	} `json:"results"`
}

func (r *response) toResult() (*stt.Result, error) {
	if r.Results == nil || len(r.Results.Channels) == 0 || len(r.Results.Channels[0].Alternatives) == 0 {
		return nil, stt.ErrEmptyResult
	}

	alt := r.Results.Channels[0].Alternatives[0]
	res := &stt.Result{
		Transcript: alt.Transcript,
		Confidence: alt.Confidence,
		RequestID:  r.Metadata.RequestID,
		Duration:   r.Metadata.Duration,
	}
	for _, e := range alt.Entities {
		res.Entities = append(res.Entities, stt.Entity{
			Label:      e.Label,
			Value:      e.Value,
			Confidence: e.Confidence,
		})
	}
	if s := r.Results.Sentiments; s != nil && s.Average != nil && s.Average.SentimentScore != nil {
		score := *s.Average.SentimentScore
		res.SentimentScore = &score
	}
	return res, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
