package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is the schema version stamped on every event.
const EnvelopeVersion = 1

// Aggregate identifies the entity an event is about. Messages are keyed by
// its ID.
type Aggregate struct {
	ID   string
	Type string
}

// Event is the envelope every published message is wrapped in.
type Event struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	AggregateID   string            `json:"aggregate_id"`
	AggregateType string            `json:"aggregate_type"`
	Version       int               `json:"version"`
	Timestamp     time.Time         `json:"timestamp"`
	Source        string            `json:"source"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// EventOption customizes an event built by NewEvent.
type EventOption func(*Event)

// WithCorrelationID ties the event to the request that caused it. Empty IDs
// are ignored.
func WithCorrelationID(id string) EventOption {
	return func(e *Event) {
		if id != "" {
			e.CorrelationID = id
		}
	}
}

// WithMetadata adds a key-value pair to the event metadata.
func WithMetadata(key, value string) EventOption {
	return func(e *Event) {
		if e.Metadata == nil {
			e.Metadata = make(map[string]string)
		}
		e.Metadata[key] = value
	}
}

// NewEvent wraps data in an envelope with a fresh ID and UTC timestamp.
func NewEvent(eventType string, agg Aggregate, source string, data any, opts ...EventOption) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	e := &Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		AggregateID:   agg.ID,
		AggregateType: agg.Type,
		Version:       EnvelopeVersion,
		Timestamp:     time.Now().UTC(),
		Source:        source,
		Data:          raw,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Marshal serializes the event to JSON bytes.
func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalData deserializes the event payload into target.
func (e *Event) UnmarshalData(target any) error {
	return json.Unmarshal(e.Data, target)
}
