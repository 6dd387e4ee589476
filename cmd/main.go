package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcapi "distress-audio-triage-service/internal/api/grpc"
	"distress-audio-triage-service/internal/app"
	"distress-audio-triage-service/internal/config"
	httpapi "distress-audio-triage-service/internal/http"
	"distress-audio-triage-service/internal/observability"
)

// grpcMessageOverhead is allowed on top of the audio limit for message framing.
const grpcMessageOverhead = 1 << 20

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(ctx, cfg)
	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	defer application.Shutdown()

	// Observability: /metrics, /healthz, /readyz
	obs := observability.NewServer(":"+cfg.Service.MetricsPort, prometheus.DefaultGatherer, application.Ready)
	obs.Start()

	// HTTP API
	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application),
		ReadHeaderTimeout: 10 * time.Second,
		// Long enough for a full upload plus the upstream transcription.
		WriteTimeout: cfg.STT.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("HTTP server error")
			stop()
		}
	}()

	// gRPC API
	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Service.GRPCPort).Msg("Failed to listen")
	}

	server := grpc.NewServer(
		append(
			[]grpc.ServerOption{grpc.UnaryInterceptor(observability.UnaryServerInterceptor(application.Metrics))},
			messageSizeOptions(cfg.Limits.MaxAudioBytes)...,
		)...,
	)

	// Register gRPC health check service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	servingStatus := grpc_health_v1.HealthCheckResponse_SERVING
	if ok, _ := application.Ready(); !ok {
		servingStatus = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcapi.ServiceName, servingStatus)

	// Register application services
	grpcapi.Register(server, application.Analyzer)

	// Enable gRPC reflection for debugging tools like grpcurl
	reflection.Register(server)

	go func() {
		log.Info().Str("addr", lis.Addr().String()).Msg("Starting gRPC server")
		if err := server.Serve(lis); err != nil {
			log.Error().Err(err).Msg("gRPC serve failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	server.GracefulStop()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown error")
	}
}

// messageSizeOptions raises the gRPC receive limit to fit the largest accepted
// audio. A non-positive limit means unbounded audio; gRPC's default applies.
func messageSizeOptions(maxAudioBytes int64) []grpc.ServerOption {
	if maxAudioBytes <= 0 {
		return nil
	}
	return []grpc.ServerOption{grpc.MaxRecvMsgSize(int(maxAudioBytes) + grpcMessageOverhead)}
}
