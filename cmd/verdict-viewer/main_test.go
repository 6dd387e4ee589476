package main

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/segmentio/kafka-go"

	"distress-audio-triage-service/internal/models"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name     string
		msg      kafka.Message
		expected string
		wantErr  bool
	}{
		{
			name:     "event type in payload",
			msg:      kafka.Message{Value: []byte(`{"eventType":"distress.alert","requestId":"r1"}`)},
			expected: "distress.alert",
		},
		{
			name: "event type from header",
			msg: kafka.Message{
				Value:   []byte(`{"requestId":"r1"}`),
				Headers: []kafka.Header{{Key: "eventType", Value: []byte("verdict")}},
			},
			expected: "distress.verdict",
		},
		{
			name:    "invalid json",
			msg:     kafka.Message{Value: []byte(`{`)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := decodeEvent(tt.msg)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.EventType != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, ev.EventType)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected 'short', got %s", got)
	}
	if got := truncate("a long transcript", 6); got != "a long..." {
		t.Errorf("expected 'a long...', got %s", got)
	}
}

func TestHub_Broadcast(t *testing.T) {
	done := make(chan struct{})
	defer close(done)
	hub := newHub(done)
	go hub.run()

	srv := httptest.NewServer(wsHandler(hub))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.clientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.broadcast <- models.VerdictEvent{
		EventType:         models.EventTypeAlert,
		RequestID:         "req-7",
		DistressConfirmed: true,
		DetectedKeywords:  []string{"help"},
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.VerdictEvent
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	if got.RequestID != "req-7" || !got.DistressConfirmed {
		t.Errorf("unexpected event %+v", got)
	}
}

func TestWSHandler_AfterShutdown(t *testing.T) {
	done := make(chan struct{})
	hub := newHub(done)
	close(done) // run is never started, as after shutdown

	srv := httptest.NewServer(wsHandler(hub))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()

	// The handler must close the connection instead of blocking on register.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	if err == nil {
		t.Fatal("expected connection to be closed")
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		t.Fatal("handler blocked instead of closing the connection")
	}
	if hub.clientCount() != 0 {
		t.Errorf("expected no registered clients, got %d", hub.clientCount())
	}
}
