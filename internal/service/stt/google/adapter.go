// Package google provides a Google Cloud Speech-to-Text adapter.
package google

import (
	"context"
	"strconv"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/googleapis/gax-go/v2"

	"distress-audio-triage-service/internal/service/stt"
)

// Config holds Google STT recognition settings.
type Config struct {
	LanguageCode  string
	SampleRateHz  int32
	AudioEncoding string
	Punctuate     bool
}

// DefaultConfig returns default recognition settings.
func DefaultConfig() Config {
	return Config{
		LanguageCode:  "en-US",
		SampleRateHz:  16000,
		AudioEncoding: "LINEAR16",
		Punctuate:     true,
	}
}

// recognizer is the subset of *speech.Client the adapter uses.
type recognizer interface {
	Recognize(ctx context.Context, req *speechpb.RecognizeRequest, opts ...gax.CallOption) (*speechpb.RecognizeResponse, error)
	Close() error
}

// Adapter implements stt.Transcriber using synchronous Google recognition.
// Google does not score sentiment, so results never carry one.
type Adapter struct {
	client recognizer
	cfg    Config
}

// New creates a new Google STT adapter.
// Requires GOOGLE_APPLICATION_CREDENTIALS environment variable to be set.
func New(ctx context.Context, cfg Config) (*Adapter, error) {
	c, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Adapter{client: c, cfg: cfg}, nil
}

// Name implements stt.Transcriber.
func (a *Adapter) Name() string {
	return "google"
}

// Transcribe runs a synchronous recognition over audio. Top alternatives of all
// results are joined; confidence is their mean.
func (a *Adapter) Transcribe(ctx context.Context, audio []byte, _ string) (*stt.Result, error) {
	resp, err := a.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   parseAudioEncoding(a.cfg.AudioEncoding),
			SampleRateHertz:            a.cfg.SampleRateHz,
			LanguageCode:               a.cfg.LanguageCode,
			EnableAutomaticPunctuation: a.cfg.Punctuate,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return nil, err
	}

	var (
		parts []string
		conf  float64
	)
	for _, r := range resp.GetResults() {
		if len(r.GetAlternatives()) == 0 {
			continue
		}
		alt := r.GetAlternatives()[0]
		parts = append(parts, strings.TrimSpace(alt.GetTranscript()))
		conf += float64(alt.GetConfidence())
	}
	if len(parts) == 0 {
		return nil, stt.ErrEmptyResult
	}

	return &stt.Result{
		Transcript: strings.Join(parts, " "),
		Confidence: conf / float64(len(parts)),
		RequestID:  strconv.FormatInt(resp.GetRequestId(), 10),
	}, nil
}

// Close releases the underlying gRPC connection.
func (a *Adapter) Close() error {
	return a.client.Close()
}

// parseAudioEncoding maps an encoding name to the Google enum, falling back to
// LINEAR16 for unknown values. Names are case-sensitive.
func parseAudioEncoding(name string) speechpb.RecognitionConfig_AudioEncoding {
	switch name {
	case "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW
	case "AMR":
		return speechpb.RecognitionConfig_AMR
	case "AMR_WB":
		return speechpb.RecognitionConfig_AMR_WB
	case "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS
	case "SPEEX_WITH_HEADER_BYTE":
		return speechpb.RecognitionConfig_SPEEX_WITH_HEADER_BYTE
	case "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS
	default:
		return speechpb.RecognitionConfig_LINEAR16
	}
}
