package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"distress-audio-triage-service/internal/models"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	audioFile := flag.String("audio", "testdata/sample.wav", "Path to WAV file (16-bit PCM)")
	serverURL := flag.String("server", "http://localhost:8080", "HTTP server base URL")
	timeout := flag.Duration("timeout", 90*time.Second, "Request timeout")
	flag.Parse()

	audio, err := os.ReadFile(*audioFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read audio file")
	}

	if err := inspectWAV(audio); err != nil {
		log.Fatal().Err(err).Msg("Invalid audio file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	resp, status, err := upload(ctx, *serverURL+"/analyze_audio_distress", filepath.Base(*audioFile), audio)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}
	if status != http.StatusOK {
		log.Fatal().Int("status", status).Str("error", resp.Error).Msg("Server rejected audio")
	}

	event := log.Info()
	if resp.DistressConfirmed {
		event = log.Warn()
	}
	event.
		Str("requestId", resp.RequestID).
		Str("provider", resp.Provider).
		Bool("distressConfirmed", resp.DistressConfirmed).
		Strs("detectedKeywords", resp.DetectedKeywords).
		Float64("sentimentScore", resp.SentimentScore).
		Bool("elevatedPriority", resp.ElevatedPriority).
		Str("error", resp.Error).
		Msg(resp.Transcript)

	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))
}

// inspectWAV validates the header and logs the audio format.
func inspectWAV(audio []byte) error {
	if len(audio) < wavHeaderSize {
		return fmt.Errorf("file too short for a WAV header: %d bytes", len(audio))
	}
	header := audio[:wavHeaderSize]

	// Validate it's a WAV file
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return fmt.Errorf("not a valid WAV file")
	}

	// Extract audio format info
	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Info().
		Uint16("format", audioFormat).
		Uint16("channels", numChannels).
		Uint32("sampleRate", sampleRate).
		Uint16("bitsPerSample", bitsPerSample).
		Int("bytes", len(audio)).
		Msg("WAV file")

	if audioFormat != 1 { // PCM
		return fmt.Errorf("only PCM format supported, got format %d", audioFormat)
	}
	return nil
}

// upload posts the audio as the "file" field of a multipart form.
func upload(ctx context.Context, url, filename string, audio []byte) (*models.AnalysisResponse, int, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, 0, err
	}
	if _, err := fw.Write(audio); err != nil {
		return nil, 0, err
	}
	if err := mw.Close(); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	log.Info().Str("url", url).Str("file", filename).Msg("Uploading audio")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, res.StatusCode, err
	}
	var resp models.AnalysisResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, res.StatusCode, fmt.Errorf("decode response (status %d): %w", res.StatusCode, err)
	}
	return &resp, res.StatusCode, nil
}
