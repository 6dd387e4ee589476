package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"

	grpcapi "distress-audio-triage-service/internal/api/grpc"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	serverAddr := flag.String("server", "localhost:50051", "gRPC server address")
	audioFile := flag.String("audio", "", "Optional audio file; placeholder bytes are sent otherwise")
	contentType := flag.String("content-type", "audio/wav", "Audio content type")
	flag.Parse()

	audio := []byte("audio-chunk-1audio-chunk-2audio-chunk-3")
	if *audioFile != "" {
		var err error
		if audio, err = os.ReadFile(*audioFile); err != nil {
			log.Fatal().Err(err).Msg("Failed to read audio file")
		}
	}

	conn, err := grpc.NewClient(*serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer conn.Close()

	log.Info().Str("server", *serverAddr).Msg("Connected to server")

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	health, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: grpcapi.ServiceName})
	if err != nil {
		log.Fatal().Err(err).Msg("Health check failed")
	}
	log.Info().Str("status", health.GetStatus().String()).Msg("Health check")

	requestID := uuid.NewString()
	resp, err := grpcapi.NewClient(conn).AnalyzeAudio(ctx, audio, grpcapi.CallOptions{
		RequestID:   requestID,
		ContentType: *contentType,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("AnalyzeAudio failed")
	}

	log.Info().
		Str("requestId", resp.RequestID).
		Str("provider", resp.Provider).
		Bool("distressConfirmed", resp.DistressConfirmed).
		Strs("detectedKeywords", resp.DetectedKeywords).
		Float64("sentimentScore", resp.SentimentScore).
		Bool("elevatedPriority", resp.ElevatedPriority).
		Str("transcript", resp.Transcript).
		Str("error", resp.Error).
		Msg("Received verdict")
}
