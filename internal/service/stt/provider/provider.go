// Package provider builds the configured STT client.
package provider

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"distress-audio-triage-service/internal/config"
	"distress-audio-triage-service/internal/service/stt"
	"distress-audio-triage-service/internal/service/stt/deepgram"
	"distress-audio-triage-service/internal/service/stt/google"
	"distress-audio-triage-service/internal/service/stt/mock"
)

// New returns an available client for the configured provider, or an
// unavailable one describing why it could not be built. It never fails.
func New(ctx context.Context, cfg config.STTConfig) stt.Client {
	logger := log.With().Str("component", "stt").Str("sttProvider", cfg.Provider).Logger()

	switch cfg.Provider {
	case "deepgram":
		a, err := deepgram.New(deepgram.Config{
			APIKey:         cfg.APIKey,
			BaseURL:        cfg.BaseURL,
			Model:          cfg.Model,
			Language:       cfg.Language,
			SmartFormat:    cfg.SmartFormat,
			Sentiment:      cfg.Sentiment,
			DetectEntities: cfg.DetectEntities,
			Punctuate:      cfg.Punctuate,
			Timeout:        cfg.Timeout,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Deepgram integration disabled")
			return stt.Unavailable(err.Error())
		}
		logger.Info().Str("model", cfg.Model).Msg("Deepgram client initialized")
		return stt.Available(a)

	case "google":
		a, err := google.New(ctx, google.Config{
			LanguageCode:  googleLanguage(cfg.Language),
			SampleRateHz:  int32(cfg.SampleRateHz),
			AudioEncoding: cfg.AudioEncoding,
			Punctuate:     cfg.Punctuate,
		})
		if err != nil {
			logger.Error().Err(err).Msg("Failed to initialize Google Speech client")
			return stt.Unavailable(fmt.Sprintf("google: %v", err))
		}
		logger.Info().Msg("Google Speech client initialized")
		return stt.Available(a)

	case "mock":
		logger.Warn().Msg("Using mock STT provider")
		return stt.Available(mock.New())

	default:
		logger.Error().Msg("Unknown STT provider")
		return stt.Unavailable(fmt.Sprintf("unknown STT provider %q", cfg.Provider))
	}
}

// googleLanguage widens bare language codes to the BCP-47 region form Google expects.
func googleLanguage(lang string) string {
	if lang == "" || lang == "en" {
		return "en-US"
	}
	return lang
}
