package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/minicart/internal/catalog"
	"github.com/utafrali/minicart/internal/domain"
	apperrors "github.com/utafrali/minicart/pkg/errors"
)

var tracer = otel.Tracer("github.com/utafrali/minicart/internal/store")

// Publisher is notified after every operation that changed the cart.
type Publisher interface {
	PublishCartUpdated(ctx context.Context, revision uint64, cart domain.Cart) error
}

// NopPublisher discards cart updates.
type NopPublisher struct{}

// PublishCartUpdated implements Publisher.
func (NopPublisher) PublishCartUpdated(context.Context, uint64, domain.Cart) error { return nil }

// Snapshot is a consistent view of the cart for one render cycle.
type Snapshot struct {
	Cart     domain.Cart
	Total    decimal.Decimal
	Revision uint64
}

// Empty reports whether the snapshot's cart has no entries.
func (s Snapshot) Empty() bool {
	return domain.IsCartEmpty(s.Cart)
}

// CartStore owns the catalog and the single in-memory cart. Every operation
// runs under one mutex, so operations apply in the order they are invoked and
// callers only ever see whole snapshots.
type CartStore struct {
	catalog   *catalog.Catalog
	publisher Publisher
	logger    *slog.Logger

	mu       sync.Mutex
	cart     domain.Cart
	revision uint64
}

// NewCartStore creates a store with an empty cart. A nil publisher disables
// update notifications.
func NewCartStore(c *catalog.Catalog, publisher Publisher, logger *slog.Logger) *CartStore {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	s := &CartStore{
		catalog:   c,
		publisher: publisher,
		logger:    logger,
		cart:      domain.NewCart(),
	}
	s.observe(s.cart)
	return s
}

// Catalog returns the products that can be added, in display order.
func (s *CartStore) Catalog() []domain.CatalogItem {
	return s.catalog.Items()
}

// Cart returns a copy of the current cart.
func (s *CartStore) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// Total returns the current cart total.
func (s *CartStore) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CalculateTotal(s.cart)
}

// IsCartEmpty reports whether the cart currently has no entries.
func (s *CartStore) IsCartEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.IsCartEmpty(s.cart)
}

// Snapshot returns the cart, its total and revision read atomically.
func (s *CartStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Cart:     s.cart.Clone(),
		Total:    domain.CalculateTotal(s.cart),
		Revision: s.revision,
	}
}

// AddToCart adds one unit of item and returns the new cart.
func (s *CartStore) AddToCart(ctx context.Context, item domain.CatalogItem) domain.Cart {
	ctx, span := tracer.Start(ctx, "cart.add", trace.WithAttributes(attribute.String("product.name", item.Name)))
	defer span.End()

	next, rev := s.apply(func(c domain.Cart) (domain.Cart, bool) {
		return domain.AddToCart(c, item), true
	})
	s.recorded(ctx, "add", item.Name, rev, next, true)
	return next
}

// AddByName looks name up in the catalog and adds one unit of it. Unknown
// names yield a NOT_FOUND error and leave the cart untouched.
func (s *CartStore) AddByName(ctx context.Context, name string) (domain.Cart, error) {
	item, ok := s.catalog.Lookup(name)
	if !ok {
		cartOperationsTotal.WithLabelValues("add", resultUnknown).Inc()
		return domain.Cart{}, apperrors.NotFound("product", name)
	}
	return s.AddToCart(ctx, item), nil
}

// IncrementQuantity adds one unit to an existing entry. Unknown names are a no-op.
func (s *CartStore) IncrementQuantity(ctx context.Context, name string) domain.Cart {
	ctx, span := tracer.Start(ctx, "cart.increment", trace.WithAttributes(attribute.String("product.name", name)))
	defer span.End()

	next, rev := s.apply(func(c domain.Cart) (domain.Cart, bool) {
		if domain.FindEntryIndex(c, name) < 0 {
			return c, false
		}
		return domain.IncrementQuantity(c, name), true
	})
	s.recorded(ctx, "increment", name, rev, next, rev > 0)
	return next
}

// RemoveFromCart drops the entry with the given name. Unknown names are a no-op.
func (s *CartStore) RemoveFromCart(ctx context.Context, name string) domain.Cart {
	ctx, span := tracer.Start(ctx, "cart.remove", trace.WithAttributes(attribute.String("product.name", name)))
	defer span.End()

	next, rev := s.apply(func(c domain.Cart) (domain.Cart, bool) {
		if domain.FindEntryIndex(c, name) < 0 {
			return c, false
		}
		return domain.RemoveFromCart(c, name), true
	})
	s.recorded(ctx, "remove", name, rev, next, rev > 0)
	return next
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) domain.Cart {
	ctx, span := tracer.Start(ctx, "cart.clear")
	defer span.End()

	next, rev := s.apply(func(c domain.Cart) (domain.Cart, bool) {
		if domain.IsCartEmpty(c) {
			return c, false
		}
		return domain.NewCart(), true
	})
	s.recorded(ctx, "clear", "", rev, next, rev > 0)
	return next
}

// apply runs fn against the current cart and swaps in the result when fn
// reports a change. It returns a copy of the resulting cart and the new
// revision, or 0 when nothing changed.
func (s *CartStore) apply(fn func(domain.Cart) (domain.Cart, bool)) (domain.Cart, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(s.cart)
	if !changed {
		return s.cart.Clone(), 0
	}

	s.cart = next
	s.revision++
	s.observe(next)
	return next.Clone(), s.revision
}

func (s *CartStore) observe(c domain.Cart) {
	cartEntries.Set(float64(len(c.Entries)))
	cartItems.Set(float64(domain.ItemCount(c)))
	cartTotal.Set(domain.CalculateTotal(c).InexactFloat64())
}

// recorded logs, counts and publishes a finished operation. Publish failures
// are logged and never surface to the caller.
func (s *CartStore) recorded(ctx context.Context, op, name string, rev uint64, c domain.Cart, changed bool) {
	if !changed {
		cartOperationsTotal.WithLabelValues(op, resultNoop).Inc()
		s.logger.DebugContext(ctx, "cart operation had no effect",
			slog.String("operation", op),
			slog.String("product", name),
		)
		return
	}

	cartOperationsTotal.WithLabelValues(op, resultApplied).Inc()

	if err := s.publisher.PublishCartUpdated(ctx, rev, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.Uint64("revision", rev),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "cart updated",
		slog.String("operation", op),
		slog.String("product", name),
		slog.Uint64("revision", rev),
		slog.Int("entries", len(c.Entries)),
		slog.String("total", domain.CalculateTotal(c).StringFixed(2)),
	)
}
