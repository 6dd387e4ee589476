// Verdict Viewer - live distress verdict display
// Consumes verdict and alert topics from Kafka and pushes them to browsers over WebSocket
package main

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"flag"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"distress-audio-triage-service/internal/models"
)

//go:embed static/*
var staticFiles embed.FS

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// decodeEvent parses a Kafka message value, falling back to the eventType
// header when the payload omits it.
func decodeEvent(msg kafka.Message) (models.VerdictEvent, error) {
	var event models.VerdictEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return event, err
	}
	if event.EventType == "" {
		for _, h := range msg.Headers {
			if h.Key == "eventType" {
				event.EventType = "distress." + string(h.Value)
			}
		}
	}
	return event, nil
}

func consumeKafka(ctx context.Context, hub *Hub, brokers, topic string) {
	// Use partition reader without consumer group (works better through port-forward)
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   strings.Split(brokers, ","),
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	if err := reader.SetOffsetAt(ctx, time.Now().Add(-1*time.Hour)); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("Failed to seek, reading from current offset")
	}

	log.Info().Str("topic", topic).Msg("Consuming from Kafka topic partition 0 (last hour)")

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Str("topic", topic).Msg("Kafka read error")
			time.Sleep(time.Second)
			continue
		}

		event, err := decodeEvent(msg)
		if err != nil {
			log.Warn().Err(err).Str("topic", topic).Msg("JSON unmarshal error")
			continue
		}

		log.Info().
			Str("eventType", event.EventType).
			Str("requestId", event.RequestID).
			Bool("distressConfirmed", event.DistressConfirmed).
			Str("transcript", truncate(event.Transcript, 40)).
			Msg("Received verdict")

		select {
		case hub.broadcast <- event:
		case <-ctx.Done():
			return
		}
	}
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	port := flag.String("port", "8081", "HTTP server port")
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topicVerdict := flag.String("topic-verdict", "distress.verdict", "Verdict topic")
	topicAlert := flag.String("topic-alert", "distress.alert", "Alert topic")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := newHub(ctx.Done())
	go hub.run()

	// Start Kafka consumers
	go consumeKafka(ctx, hub, *brokers, *topicVerdict)
	go consumeKafka(ctx, hub, *brokers, *topicAlert)

	mux := http.NewServeMux()
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load static files")
	}
	mux.Handle("/", http.FileServer(http.FS(staticFS)))
	mux.HandleFunc("/ws", wsHandler(hub))

	server := &http.Server{Addr: ":" + *port, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("url", "http://localhost:"+*port).
		Str("brokers", *brokers).
		Strs("topics", []string{*topicVerdict, *topicAlert}).
		Msg("Verdict Viewer starting")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server error")
	}
}
