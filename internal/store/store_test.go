package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/minicart/internal/catalog"
	"github.com/utafrali/minicart/internal/domain"
	apperrors "github.com/utafrali/minicart/pkg/errors"
)

// --- Mock Publisher ---

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishCartUpdated(ctx context.Context, revision uint64, cart domain.Cart) error {
	args := m.Called(ctx, revision, cart)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestStore(pub Publisher) *CartStore {
	return NewCartStore(catalog.Default(), pub, newTestLogger())
}

func mustLookup(t *testing.T, s *CartStore, name string) domain.CatalogItem {
	t.Helper()
	for _, item := range s.Catalog() {
		if item.Name == name {
			return item
		}
	}
	t.Fatalf("catalog has no %q", name)
	return domain.CatalogItem{}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

// ============================================================================
// Queries
// ============================================================================

func TestNewCartStore_StartsEmpty(t *testing.T) {
	s := newTestStore(nil)

	assert.True(t, s.IsCartEmpty())
	assert.Empty(t, s.Cart().Entries)
	assertDecimal(t, "0", s.Total())
	assert.Len(t, s.Catalog(), 4)
}

func TestCart_ReturnsCopy(t *testing.T) {
	s := newTestStore(nil)
	s.AddToCart(context.Background(), mustLookup(t, s, "Mela"))

	c := s.Cart()
	c.Entries[0].Quantity = 99

	assert.Equal(t, 1, s.Cart().Entries[0].Quantity)
}

func TestSnapshot_IsConsistent(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	s.AddToCart(ctx, mustLookup(t, s, "Mela"))
	s.AddToCart(ctx, mustLookup(t, s, "Pane"))

	snap := s.Snapshot()

	assert.False(t, snap.Empty())
	assert.Equal(t, uint64(2), snap.Revision)
	require.Len(t, snap.Cart.Entries, 2)
	assertDecimal(t, "1.7", snap.Total)
}

// ============================================================================
// Mutations
// ============================================================================

func TestAddToCart_PublishesNewSnapshot(t *testing.T) {
	pub := new(mockPublisher)
	s := newTestStore(pub)
	mela := mustLookup(t, s, "Mela")

	pub.On("PublishCartUpdated", mock.Anything, uint64(1), mock.MatchedBy(func(c domain.Cart) bool {
		return len(c.Entries) == 1 && c.Entries[0].Name == "Mela" && c.Entries[0].Quantity == 1
	})).Return(nil).Once()

	c := s.AddToCart(context.Background(), mela)

	require.Len(t, c.Entries, 1)
	assert.Equal(t, 1, c.Entries[0].Quantity)
	pub.AssertExpectations(t)
}

func TestAddToCart_PublishFailureDoesNotFailOperation(t *testing.T) {
	pub := new(mockPublisher)
	s := newTestStore(pub)

	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("broker down"))

	c := s.AddToCart(context.Background(), mustLookup(t, s, "Pane"))

	require.Len(t, c.Entries, 1)
	assert.False(t, s.IsCartEmpty())
	pub.AssertNumberOfCalls(t, "PublishCartUpdated", 1)
}

func TestAddByName(t *testing.T) {
	s := newTestStore(nil)

	c, err := s.AddByName(context.Background(), "Latte")

	require.NoError(t, err)
	require.Len(t, c.Entries, 1)
	assert.Equal(t, "Latte", c.Entries[0].Name)
	assertDecimal(t, "1.0", c.Entries[0].Price)
}

func TestAddByName_UnknownProduct(t *testing.T) {
	pub := new(mockPublisher)
	s := newTestStore(pub)

	_, err := s.AddByName(context.Background(), "Vino")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	assert.True(t, s.IsCartEmpty())
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything)
}

func TestIncrementQuantity(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()
	s.AddToCart(ctx, mustLookup(t, s, "Pasta"))

	c := s.IncrementQuantity(ctx, "Pasta")

	require.Len(t, c.Entries, 1)
	assert.Equal(t, 2, c.Entries[0].Quantity)
	assertDecimal(t, "1.4", s.Total())
}

func TestIncrementQuantity_UnknownIsNoOp(t *testing.T) {
	pub := new(mockPublisher)
	s := newTestStore(pub)

	c := s.IncrementQuantity(context.Background(), "Pasta")

	assert.Empty(t, c.Entries)
	assert.Equal(t, uint64(0), s.Snapshot().Revision)
	pub.AssertNotCalled(t, "PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything)
}

func TestRemoveFromCart_UnknownIsNoOp(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newTestStore(pub)
	ctx := context.Background()
	s.AddToCart(ctx, mustLookup(t, s, "Mela"))
	before := s.Cart()

	after := s.RemoveFromCart(ctx, "Vino")

	assert.Equal(t, before, after)
	pub.AssertNumberOfCalls(t, "PublishCartUpdated", 1)
}

func TestClear(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newTestStore(pub)
	ctx := context.Background()
	s.AddToCart(ctx, mustLookup(t, s, "Mela"))
	s.AddToCart(ctx, mustLookup(t, s, "Pane"))

	c := s.Clear(ctx)

	assert.Empty(t, c.Entries)
	assert.True(t, s.IsCartEmpty())
	assertDecimal(t, "0", s.Total())
	pub.AssertNumberOfCalls(t, "PublishCartUpdated", 3)

	// Clearing an empty cart is a no-op.
	s.Clear(ctx)
	pub.AssertNumberOfCalls(t, "PublishCartUpdated", 3)
}

// ============================================================================
// Scenario
// ============================================================================

func TestScenario_AddAddAddRemove(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("PublishCartUpdated", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	s := newTestStore(pub)
	ctx := context.Background()
	mela := mustLookup(t, s, "Mela")
	pane := mustLookup(t, s, "Pane")

	assert.True(t, s.IsCartEmpty())

	s.AddToCart(ctx, mela)
	s.AddToCart(ctx, pane)
	c := s.AddToCart(ctx, mela)

	require.Len(t, c.Entries, 2)
	assert.Equal(t, domain.CartEntry{Name: "Mela", Price: mela.Price, Quantity: 2}, c.Entries[0])
	assert.Equal(t, domain.CartEntry{Name: "Pane", Price: pane.Price, Quantity: 1}, c.Entries[1])
	assertDecimal(t, "2.2", s.Total())

	c = s.RemoveFromCart(ctx, "Pane")

	require.Len(t, c.Entries, 1)
	assert.Equal(t, "Mela", c.Entries[0].Name)
	assert.Equal(t, 2, c.Entries[0].Quantity)
	assertDecimal(t, "1.0", s.Total())
	assert.False(t, s.IsCartEmpty())

	pub.AssertNumberOfCalls(t, "PublishCartUpdated", 4)
	assert.Equal(t, uint64(4), pub.Calls[3].Arguments.Get(1))
}

// ============================================================================
// Concurrency
// ============================================================================

func TestConcurrentAdds_AreSerialized(t *testing.T) {
	s := newTestStore(nil)
	mela := mustLookup(t, s, "Mela")
	ctx := context.Background()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			s.AddToCart(ctx, mela)
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	require.Len(t, snap.Cart.Entries, 1)
	assert.Equal(t, workers, snap.Cart.Entries[0].Quantity)
	assert.Equal(t, uint64(workers), snap.Revision)
	assertDecimal(t, "25", snap.Total)
}

// ============================================================================
// Metrics
// ============================================================================

func TestMetrics_TrackOperationsAndSnapshot(t *testing.T) {
	s := newTestStore(nil)
	ctx := context.Background()

	applied := cartOperationsTotal.WithLabelValues("add", resultApplied)
	noop := cartOperationsTotal.WithLabelValues("remove", resultNoop)
	unknown := cartOperationsTotal.WithLabelValues("add", resultUnknown)
	appliedBefore := counterValue(t, applied)
	noopBefore := counterValue(t, noop)
	unknownBefore := counterValue(t, unknown)

	s.AddToCart(ctx, mustLookup(t, s, "Mela"))
	s.AddToCart(ctx, mustLookup(t, s, "Mela"))
	s.AddToCart(ctx, mustLookup(t, s, "Pane"))
	s.RemoveFromCart(ctx, "Vino")
	_, _ = s.AddByName(ctx, "Vino")

	assert.Equal(t, appliedBefore+3, counterValue(t, applied))
	assert.Equal(t, noopBefore+1, counterValue(t, noop))
	assert.Equal(t, unknownBefore+1, counterValue(t, unknown))
	assert.Equal(t, float64(2), gaugeValue(t, cartEntries))
	assert.Equal(t, float64(3), gaugeValue(t, cartItems))
	assert.InDelta(t, 2.2, gaugeValue(t, cartTotal), 1e-9)
}
