package app

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"

	"distress-audio-triage-service/internal/config"
	"distress-audio-triage-service/internal/distress"
	"distress-audio-triage-service/internal/events"
	"distress-audio-triage-service/internal/observability/logging"
	"distress-audio-triage-service/internal/observability/metrics"
	"distress-audio-triage-service/internal/service/analysis"
	"distress-audio-triage-service/internal/service/stt"
	"distress-audio-triage-service/internal/service/stt/provider"
)

// Application holds process-wide state for the service.
type Application struct {
	StartupTime time.Time
	Logger      zerolog.Logger
	Cfg         *config.Configuration

	STT       stt.Client
	Publisher *events.Publisher
	Analyzer  *analysis.Analyzer
	Metrics   *metrics.Metrics
}

// New constructs a new Application from the provided configuration. The
// transcription client is built once here and shared by every request.
func New(ctx context.Context, cfg *config.Configuration) *Application {
	a := &Application{
		Cfg:     cfg,
		Metrics: metrics.DefaultMetrics,
	}
	a.setupLogger()

	appLogger := a.Logger.With().
		Str("method", "New").
		Logger()

	a.STT = provider.New(ctx, cfg.STT)
	a.Publisher = events.New(&events.Config{
		Enabled:      cfg.Kafka.Enabled,
		Brokers:      cfg.Kafka.Brokers,
		TopicVerdict: cfg.Kafka.TopicVerdict,
		TopicAlert:   cfg.Kafka.TopicAlert,
		Principal:    cfg.Kafka.Principal,
		Metrics:      a.Metrics,
	})

	classifier := distress.NewClassifier(cfg.Distress.KeywordSet(), cfg.Distress.SentimentThreshold)
	a.Analyzer = analysis.New(a.STT, classifier, a.Publisher,
		analysis.WithLimits(analysis.Limits{MaxAudioBytes: cfg.Limits.MaxAudioBytes}),
		analysis.WithMetrics(a.Metrics),
	)

	appLogger.Info().
		Str("sttProvider", a.STT.Provider()).
		Int("keywords", classifier.Keywords().Len()).
		Float64("sentimentThreshold", classifier.Threshold()).
		Bool("kafkaEnabled", a.Publisher.Enabled()).
		Msg("Distress audio triage application created")
	return a
}

// setupLogger configures zerolog for the service.
func (a *Application) setupLogger() {
	logCfg := logging.DefaultConfig()
	if a.Cfg.Observability.LogLevel != "" {
		logCfg.Level = a.Cfg.Observability.LogLevel
	}
	if a.Cfg.Observability.LogFormat != "" {
		logCfg.Format = a.Cfg.Observability.LogFormat
	}
	logging.Init(logCfg)
	a.Logger = logging.WithComponent("application")

	a.Logger.Info().
		Str("logLevel", zerolog.GlobalLevel().String()).
		Str("logFormat", a.Cfg.Observability.LogFormat).
		Msg("Logger setup completed")
}

// Ready reports whether conclusive analyses are possible.
func (a *Application) Ready() (bool, string) {
	return a.Analyzer.Ready()
}

// Start performs any startup work required before serving traffic.
func (a *Application) Start() error {
	startLogger := a.Logger.With().
		Str("method", "Start").
		Logger()

	a.StartupTime = time.Now().UTC()
	if ok, reason := a.Ready(); !ok {
		startLogger.Warn().Str("reason", reason).Msg("Transcription unavailable, analyses will be inconclusive")
	}
	startLogger.Info().
		Time("startupTime", a.StartupTime).
		Msg("Distress audio triage service starting")

	return nil
}

// Shutdown performs a best-effort cleanup before process exit.
func (a *Application) Shutdown() {
	shutdownLogger := a.Logger.With().
		Str("method", "Shutdown").
		Logger()

	if err := a.Publisher.Close(); err != nil {
		shutdownLogger.Error().Err(err).Msg("Error closing event publisher")
	}
	if t, ok := a.STT.Transcriber(); ok {
		if c, ok := t.(io.Closer); ok {
			if err := c.Close(); err != nil {
				shutdownLogger.Error().Err(err).Msg("Error closing transcription client")
			}
		}
	}

	shutdownLogger.Info().
		Dur("uptime", time.Since(a.StartupTime)).
		Msg("Distress audio triage service shutting down")
}
