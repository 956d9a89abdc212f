package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

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

func newFakeProducer(w *fakeWriter) *Producer {
	return &Producer{
		writer: w,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func headerValue(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// --- Event tests ---

var testCart = Aggregate{ID: "cart-1", Type: "cart"}

func TestNewEvent_Fields(t *testing.T) {
	type CartData struct {
		Entries int    `json:"entries"`
		Total   string `json:"total"`
	}

	data := CartData{Entries: 2, Total: "2.2"}
	event, err := NewEvent("cart.updated", testCart, "minicart", data)
	require.NoError(t, err)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, "cart.updated", event.EventType)
	assert.Equal(t, "cart-1", event.AggregateID)
	assert.Equal(t, "cart", event.AggregateType)
	assert.Equal(t, "minicart", event.Source)
	assert.Equal(t, EnvelopeVersion, event.Version)
	assert.Empty(t, event.CorrelationID)
	assert.Nil(t, event.Metadata)
	assert.WithinDuration(t, time.Now().UTC(), event.Timestamp, 2*time.Second)

	var got CartData
	require.NoError(t, event.UnmarshalData(&got))
	assert.Equal(t, data, got)
}

func TestNewEvent_InvalidData(t *testing.T) {
	_, err := NewEvent("test.event", testCart, "minicart", make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "marshal test.event payload")
}

func TestNewEvent_Options(t *testing.T) {
	event, err := NewEvent("cart.updated", testCart, "minicart", nil,
		WithCorrelationID("corr-abc"),
		WithCorrelationID(""),
		WithMetadata("revision", "3"),
		WithMetadata("renderer", "http"),
	)
	require.NoError(t, err)

	assert.Equal(t, "corr-abc", event.CorrelationID)
	assert.Equal(t, map[string]string{"revision": "3", "renderer": "http"}, event.Metadata)
}

func TestEvent_MarshalRoundTrip(t *testing.T) {
	original, err := NewEvent("cart.updated", testCart, "minicart", map[string]string{"name": "Mela"},
		WithCorrelationID("corr-abc"), WithMetadata("renderer", "http"))
	require.NoError(t, err)

	raw, err := original.Marshal()
	require.NoError(t, err)

	var restored Event
	require.NoError(t, json.Unmarshal(raw, &restored))
	assert.Equal(t, original.EventID, restored.EventID)
	assert.Equal(t, "corr-abc", restored.CorrelationID)
	assert.Equal(t, "http", restored.Metadata["renderer"])
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

// --- Carrier tests ---

func TestHeaderCarrier_SetGetKeys(t *testing.T) {
	headers := []kafka.Header{{Key: "existing", Value: []byte("value1")}}
	c := NewHeaderCarrier(&headers)

	assert.Equal(t, "value1", c.Get("existing"))
	assert.Equal(t, "", c.Get("missing"))

	c.Set("new-key", "new-value")
	c.Set("existing", "updated")

	assert.Equal(t, "new-value", c.Get("new-key"))
	assert.Equal(t, "updated", c.Get("existing"))
	assert.ElementsMatch(t, []string{"existing", "new-key"}, c.Keys())
	assert.Len(t, headers, 2)
}

// --- Producer tests ---

func TestPublish_WritesKeyedMessage(t *testing.T) {
	w := &fakeWriter{}
	p := newFakeProducer(w)

	event, err := NewEvent("cart.updated", testCart, "minicart", map[string]int{"entries": 1}, WithCorrelationID("corr-1"))
	require.NoError(t, err)

	before := counterValue(t, producerMessages.WithLabelValues("test.topic", resultOK))

	require.NoError(t, p.Publish(context.Background(), "test.topic", event))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "test.topic", msg.Topic)
	assert.Equal(t, "cart-1", string(msg.Key))
	assert.Equal(t, "cart.updated", headerValue(msg, "event_type"))
	assert.Equal(t, "minicart", headerValue(msg, "source"))
	assert.Equal(t, "corr-1", headerValue(msg, "correlation_id"))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.EventID, decoded.EventID)

	after := counterValue(t, producerMessages.WithLabelValues("test.topic", resultOK))
	assert.Equal(t, before+1, after)
}

func TestPublish_InjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	w := &fakeWriter{}
	p := newFakeProducer(w)
	event, err := NewEvent("cart.updated", testCart, "minicart", nil)
	require.NoError(t, err)

	require.NoError(t, p.Publish(ctx, "test.topic", event))

	require.Len(t, w.msgs, 1)
	assert.Contains(t, headerValue(w.msgs[0], "traceparent"), "4bf92f3577b34da6a3ce929d0e0e4736")
}

func TestPublish_WriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newFakeProducer(w)

	event, err := NewEvent("cart.updated", testCart, "minicart", nil)
	require.NoError(t, err)

	before := counterValue(t, producerMessages.WithLabelValues("failing.topic", resultError))

	err = p.Publish(context.Background(), "failing.topic", event)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish event to failing.topic")
	assert.Equal(t, before+1, counterValue(t, producerMessages.WithLabelValues("failing.topic", resultError)))
}

func TestClose_ClosesWriter(t *testing.T) {
	w := &fakeWriter{}
	p := newFakeProducer(w)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPingBrokers_NoBrokers(t *testing.T) {
	err := PingBrokers(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no brokers configured")
}

func TestDefaultProducerConfig(t *testing.T) {
	cfg := DefaultProducerConfig([]string{"localhost:9092"})
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.False(t, cfg.Async)
}
