package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/utafrali/minicart/internal/domain"
	pkgkafka "github.com/utafrali/minicart/pkg/kafka"
	"github.com/utafrali/minicart/pkg/logger"
)

// Kafka topic constants for cart events.
const TopicCartUpdated = "minicart.cart.updated"

// Aggregate constants. There is exactly one cart per process.
const (
	AggregateTypeCart = "cart"
	AggregateIDCart   = "cart"
)

var cartAggregate = pkgkafka.Aggregate{ID: AggregateIDCart, Type: AggregateTypeCart}

// SourceMinicart identifies events originating from this service.
const SourceMinicart = "minicart"

// CartUpdatedData is the payload for a cart.updated event.
type CartUpdatedData struct {
	Revision  uint64          `json:"revision"`
	Entries   []CartEntryData `json:"entries"`
	ItemCount int             `json:"item_count"`
	Total     string          `json:"total"`
}

// CartEntryData is the entry payload within cart events. Amounts are decimal
// strings.
type CartEntryData struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

// EventPublisher is implemented by *pkgkafka.Producer.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes cart events to Kafka.
type Producer struct {
	kafka  EventPublisher
	logger *slog.Logger
}

// NewProducer creates a new cart event producer.
func NewProducer(kafka EventPublisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// NewCartUpdatedData builds the event payload for a cart snapshot.
func NewCartUpdatedData(revision uint64, cart domain.Cart) CartUpdatedData {
	entries := make([]CartEntryData, len(cart.Entries))
	for i, e := range cart.Entries {
		entries[i] = CartEntryData{
			Name:     e.Name,
			Price:    e.Price.StringFixed(2),
			Quantity: e.Quantity,
			Subtotal: e.Subtotal().StringFixed(2),
		}
	}

	return CartUpdatedData{
		Revision:  revision,
		Entries:   entries,
		ItemCount: domain.ItemCount(cart),
		Total:     domain.CalculateTotal(cart).StringFixed(2),
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, revision uint64, cart domain.Cart) error {
	data := NewCartUpdatedData(revision, cart)

	event, err := pkgkafka.NewEvent(TopicCartUpdated, cartAggregate, SourceMinicart, data,
		pkgkafka.WithCorrelationID(logger.CorrelationIDFromContext(ctx)),
		pkgkafka.WithMetadata("revision", strconv.FormatUint(revision, 10)),
	)
	if err != nil {
		return fmt.Errorf("create cart.updated event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicCartUpdated, event); err != nil {
		return fmt.Errorf("publish cart.updated event: %w", err)
	}

	p.logger.DebugContext(ctx, "published cart.updated event",
		slog.Uint64("revision", revision),
		slog.Int("item_count", data.ItemCount),
	)

	return nil
}
