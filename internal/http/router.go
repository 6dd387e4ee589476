package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"distress-audio-triage-service/internal/app"
	"distress-audio-triage-service/internal/observability/logging"
	"distress-audio-triage-service/internal/observability/metrics"
	"distress-audio-triage-service/internal/service/analysis"
)

// multipartOverhead is allowed on top of the audio limit for form framing.
const multipartOverhead = 1 << 20

// Analyzer is the part of *analysis.Analyzer the router needs.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (*analysis.Report, error)
	Ready() (bool, string)
}

type handler struct {
	analyzer      Analyzer
	metrics       *metrics.Metrics
	maxAudioBytes int64
	logger        zerolog.Logger
}

// NewRouter constructs the HTTP router for the service.
func NewRouter(application *app.Application) http.Handler {
	return newRouter(application.Analyzer, application.Metrics, application.Cfg.Limits.MaxAudioBytes)
}

func newRouter(analyzer Analyzer, m *metrics.Metrics, maxAudioBytes int64) http.Handler {
	h := &handler{
		analyzer:      analyzer,
		metrics:       m,
		maxAudioBytes: maxAudioBytes,
		logger:        logging.WithComponent("http"),
	}

	r := chi.NewRouter()

	// Basic middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.logRequests)
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/v1/liveness", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/v1/readiness", func(w http.ResponseWriter, _ *http.Request) {
		if ok, reason := analyzer.Ready(); !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready: " + reason))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Post("/analyze_audio_distress", h.analyzeUpload)

	// API routes
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", h.analyzeRaw)
	})

	return r
}

// analyzeUpload handles a multipart upload with the audio in the "file" field.
func (h *handler) analyzeUpload(w http.ResponseWriter, r *http.Request) {
	if h.maxAudioBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, analysis.ErrAudioTooLarge.Error())
			return
		}
		// A part sent with an empty filename is parsed as a plain form value.
		if r.MultipartForm != nil {
			if _, ok := r.MultipartForm.Value["file"]; ok {
				writeError(w, http.StatusBadRequest, "No selected file")
				return
			}
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.analyze(w, r, analysis.Request{
		RequestID:   middleware.GetReqID(r.Context()),
		Audio:       audio,
		ContentType: header.Header.Get("Content-Type"),
		Source:      "http",
	})
}

// analyzeRaw handles a request whose body is the audio itself.
func (h *handler) analyzeRaw(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxAudioBytes > 0 {
		// One byte over the limit is enough for the analyzer to reject it.
		body = http.MaxBytesReader(w, r.Body, h.maxAudioBytes+1)
	}
	audio, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, analysis.ErrAudioTooLarge.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.analyze(w, r, analysis.Request{
		RequestID:   middleware.GetReqID(r.Context()),
		Audio:       audio,
		ContentType: r.Header.Get("Content-Type"),
		Source:      "http",
	})
}

func (h *handler) analyze(w http.ResponseWriter, r *http.Request, req analysis.Request) {
	report, err := h.analyzer.Analyze(r.Context(), req)
	switch {
	case errors.Is(err, analysis.ErrNoAudio), errors.Is(err, analysis.ErrAudioTooLarge):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Str("requestId", req.RequestID).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report.Response())
}

// logRequests logs each request and records transport metrics.
func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if h.metrics != nil {
			h.metrics.RecordRequest("http", route, strconv.Itoa(status), duration.Seconds())
		}

		h.logger.Info().
			Str("requestId", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Str("remoteAddr", r.RemoteAddr).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
