// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"distress-audio-triage-service/internal/distress"
)

// Configuration is the complete service configuration.
type Configuration struct {
	Service       ServiceConfig
	STT           STTConfig
	Distress      DistressConfig
	Limits        LimitsConfig
	Kafka         KafkaConfig
	Observability ObservabilityConfig
}

// ServiceConfig holds listener and identity settings.
type ServiceConfig struct {
	Principal   string
	HTTPPort    string
	GRPCPort    string
	MetricsPort string
}

// STTConfig selects and configures the transcription provider.
type STTConfig struct {
	Provider       string // deepgram, google, mock
	APIKey         string
	BaseURL        string
	Model          string
	Language       string
	SmartFormat    bool
	Sentiment      bool
	DetectEntities bool
	Punctuate      bool
	Timeout        time.Duration
	SampleRateHz   int
	AudioEncoding  string
}

// DistressConfig holds the keyword set and sentiment threshold.
type DistressConfig struct {
	Keywords           []string
	SentimentThreshold float64
}

// KeywordSet builds the immutable keyword set from the configured phrases.
func (d DistressConfig) KeywordSet() distress.KeywordSet {
	return distress.NewKeywordSet(d.Keywords...)
}

// LimitsConfig bounds accepted audio.
type LimitsConfig struct {
	MaxAudioBytes int64
}

// KafkaConfig holds verdict publishing settings.
type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	TopicVerdict string
	TopicAlert   string
	Principal    string
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string
	LogFormat string
}

// Load reads a .env file if present, then builds the configuration from the
// environment. Unparseable values fall back to their defaults.
func Load() *Configuration {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() *Configuration {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-distress-triage")

	return &Configuration{
		Service: ServiceConfig{
			Principal:   principal,
			HTTPPort:    envOrDefault("HTTP_PORT", "8080"),
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
		STT: STTConfig{
			Provider:       strings.ToLower(envOrDefault("STT_PROVIDER", "deepgram")),
			APIKey:         os.Getenv("DEEPGRAM_API_KEY"),
			BaseURL:        envOrDefault("DEEPGRAM_BASE_URL", "https://api.deepgram.com/v1/listen"),
			Model:          envOrDefault("STT_MODEL", "nova-2"),
			Language:       envOrDefault("STT_LANGUAGE", "en"),
			SmartFormat:    envOrDefaultBool("STT_SMART_FORMAT", true),
			Sentiment:      envOrDefaultBool("STT_SENTIMENT", true),
			DetectEntities: envOrDefaultBool("STT_DETECT_ENTITIES", true),
			Punctuate:      envOrDefaultBool("STT_PUNCTUATE", true),
			Timeout:        envOrDefaultDuration("STT_TIMEOUT", 60*time.Second),
			SampleRateHz:   envOrDefaultInt("STT_SAMPLE_RATE_HZ", 16000),
			AudioEncoding:  envOrDefault("STT_AUDIO_ENCODING", "LINEAR16"),
		},
		Distress: DistressConfig{
			Keywords:           envOrDefaultList("DISTRESS_KEYWORDS", distress.DefaultKeywords),
			SentimentThreshold: envOrDefaultFloat("DISTRESS_SENTIMENT_THRESHOLD", distress.DefaultSentimentThreshold),
		},
		Limits: LimitsConfig{
			MaxAudioBytes: envOrDefaultInt64("MAX_AUDIO_BYTES", 25*1024*1024),
		},
		Kafka: KafkaConfig{
			Enabled:      envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:      envOrDefaultList("KAFKA_BROKERS", nil),
			TopicVerdict: envOrDefault("KAFKA_TOPIC_VERDICT", "distress.verdict"),
			TopicAlert:   envOrDefault("KAFKA_TOPIC_ALERT", "distress.alert"),
			Principal:    envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Observability: ObservabilityConfig{
			LogLevel:  strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
			LogFormat: strings.ToLower(envOrDefault("LOG_FORMAT", "json")),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envOrDefaultInt64(key string, def int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

// envOrDefaultList splits a comma-separated value, dropping blank entries.
func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
