package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"

	"distress-audio-triage-service/internal/observability/metrics"
)

// fakeWriter records messages instead of writing to Kafka.
type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestNew_DisabledMode(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"nil config", nil},
		{"disabled", &Config{Enabled: false, Brokers: []string{"localhost:9092"}}},
		{"no brokers", &Config{Enabled: true, Brokers: []string{}}},
		{"empty brokers", &Config{Enabled: true, Brokers: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg)
			if p == nil {
				t.Fatal("expected non-nil publisher")
			}
			if p.Enabled() {
				t.Error("expected publisher to be disabled")
			}
			if p.writerVerdict != nil {
				t.Error("expected nil verdict writer when disabled")
			}
			if p.writerAlert != nil {
				t.Error("expected nil alert writer when disabled")
			}
		})
	}
}

func TestNew_Enabled(t *testing.T) {
	p := New(&Config{
		Enabled:      true,
		Brokers:      []string{"localhost:9092"},
		TopicVerdict: "distress.verdict",
		TopicAlert:   "distress.alert",
	})
	defer p.Close()

	if !p.Enabled() {
		t.Fatal("expected publisher to be enabled")
	}
	w, ok := p.writerVerdict.(*kafka.Writer)
	if !ok {
		t.Fatalf("expected *kafka.Writer, got %T", p.writerVerdict)
	}
	if w.Topic != "distress.verdict" {
		t.Errorf("expected verdict writer topic, got %s", w.Topic)
	}
}

func TestNew_ConfigValues(t *testing.T) {
	p := New(&Config{
		Enabled:      false,
		Brokers:      []string{"localhost:9092"},
		TopicVerdict: "test.verdict",
		TopicAlert:   "test.alert",
		Principal:    "test-principal",
	})

	if p.principal != "test-principal" {
		t.Errorf("expected principal 'test-principal', got %s", p.principal)
	}
	if p.topicVerdict != "test.verdict" {
		t.Errorf("expected topic verdict 'test.verdict', got %s", p.topicVerdict)
	}
	if p.topicAlert != "test.alert" {
		t.Errorf("expected topic alert 'test.alert', got %s", p.topicAlert)
	}
}

func TestPublisher_Disabled(t *testing.T) {
	p := New(&Config{Enabled: false})

	event := map[string]string{"transcript": "help"}
	if err := p.PublishVerdict(context.Background(), "req-1", event); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
	if err := p.PublishAlert(context.Background(), "req-1", event); err != nil {
		t.Errorf("expected no error when disabled, got %v", err)
	}
}

func TestPublisher_InvalidJSON(t *testing.T) {
	p := New(&Config{Enabled: false})

	// Channels cannot be marshalled
	if err := p.PublishVerdict(context.Background(), "req-1", make(chan int)); err == nil {
		t.Error("expected error for unmarshalable event")
	}
	if err := p.PublishAlert(context.Background(), "req-1", make(chan int)); err == nil {
		t.Error("expected error for unmarshalable event")
	}
}

func newFakePublisher() (*Publisher, *fakeWriter, *fakeWriter, *metrics.Metrics) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	verdict, alert := &fakeWriter{}, &fakeWriter{}
	return &Publisher{
		writerVerdict: verdict,
		writerAlert:   alert,
		principal:     "test-svc",
		topicVerdict:  "distress.verdict",
		topicAlert:    "distress.alert",
		enabled:       true,
		metrics:       m,
	}, verdict, alert, m
}

type testEvent struct {
	EventType string `json:"eventType"`
	RequestID string `json:"requestId"`
}

func TestPublisher_WritesMessages(t *testing.T) {
	p, verdict, alert, m := newFakePublisher()

	ev := testEvent{EventType: "distress.alert", RequestID: "req-9"}
	if err := p.PublishVerdict(context.Background(), "req-9", ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.PublishAlert(context.Background(), "req-9", ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(verdict.msgs) != 1 || len(alert.msgs) != 1 {
		t.Fatalf("expected one message per topic, got %d and %d", len(verdict.msgs), len(alert.msgs))
	}

	msg := alert.msgs[0]
	if string(msg.Key) != "req-9" {
		t.Errorf("expected key 'req-9', got %s", msg.Key)
	}
	var decoded testEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != ev {
		t.Errorf("expected %+v, got %+v", ev, decoded)
	}

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["eventType"] != "alert" || headers["principal"] != "test-svc" {
		t.Errorf("unexpected headers %v", headers)
	}

	if got := testutil.ToFloat64(m.KafkaPublishTotal.WithLabelValues("distress.alert", "alert")); got != 1 {
		t.Errorf("expected 1 alert publish recorded, got %v", got)
	}
}

func TestPublisher_WriteError(t *testing.T) {
	p, verdict, _, m := newFakePublisher()
	verdict.err = errors.New("broker unavailable")

	if err := p.PublishVerdict(context.Background(), "req-1", testEvent{}); err == nil {
		t.Fatal("expected write error")
	}
	if got := testutil.ToFloat64(m.KafkaPublishErrors.WithLabelValues("distress.verdict", "verdict")); got != 1 {
		t.Errorf("expected 1 publish error recorded, got %v", got)
	}
}

func TestPublisher_Close(t *testing.T) {
	p, verdict, alert, _ := newFakePublisher()

	if err := p.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.closed || !alert.closed {
		t.Error("expected both writers closed")
	}
}

func TestPublisher_Close_NoWriters(t *testing.T) {
	p := New(&Config{Enabled: false})

	if err := p.Close(); err != nil {
		t.Errorf("expected no error closing disabled publisher, got %v", err)
	}
}
