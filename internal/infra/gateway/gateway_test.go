package gateway

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ordersaga/internal/eventbus"
	"ordersaga/internal/infra/eventhandler"
	"ordersaga/internal/infra/repository"
	"ordersaga/internal/pkg/clock"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memProductStore mimics the products table with live counters so the full
// deduct/restore exchange can be asserted end to end.
type memProductStore struct {
	mu       sync.Mutex
	stock    map[uuid.UUID]int32
	snapshot repository.ProductSnapshot
}

func (s *memProductStore) DeductStock(_ context.Context, productID uuid.UUID, quantity int32) (*repository.ProductSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining, ok := s.stock[productID]
	if !ok {
		return nil, errs.New("product not found")
	}
	if remaining < quantity {
		return nil, errs.New("insufficient stock")
	}
	s.stock[productID] = remaining - quantity
	snapshot := s.snapshot
	return &snapshot, nil
}

func (s *memProductStore) RestoreStock(_ context.Context, productID uuid.UUID, quantity int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stock[productID] += quantity
	return nil
}

type memBalanceStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int64
}

func (s *memBalanceStore) DeductBalance(_ context.Context, userID uuid.UUID, amountCents int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[userID]
	if !ok {
		return 0, errs.New("user not found")
	}
	if balance < amountCents {
		return 0, errs.New("insufficient balance")
	}
	s.balances[userID] = balance - amountCents
	return s.balances[userID], nil
}

func newExchangeFixture() (*eventbus.Bus, *eventbus.Bridge, config.SagaConfig) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.NewBus(logger)
	bridge := eventbus.NewBridge(bus, logger)
	cfg := config.SagaConfig{StepTimeout: time.Second, CompensationTimeout: time.Second}
	return bus, bridge, cfg
}

func TestStockGateway_DeductAndRestoreRoundTrip(t *testing.T) {
	bus, bridge, cfg := newExchangeFixture()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	productID := uuid.New()
	store := &memProductStore{
		stock:    map[uuid.UUID]int32{productID: 5},
		snapshot: repository.ProductSnapshot{Name: "keyboard", PriceCents: 5000},
	}
	eventhandler.NewStockHandler(store, bus, logger).Register()
	bridge.RouteResponses(
		"stock.deduction.completed",
		"stock.restoration.completed",
	)

	g := NewStockGateway(bridge, cfg)

	deduction, err := g.Deduct(context.Background(), uuid.New(), productID, 2)
	require.NoError(t, err)
	assert.Equal(t, "keyboard", deduction.ProductName)
	assert.Equal(t, int64(5000), deduction.UnitPriceCents)
	assert.Equal(t, int32(3), store.stock[productID])

	require.NoError(t, g.Restore(context.Background(), uuid.New(), productID, 2, "balance deduction failed"))
	assert.Equal(t, int32(5), store.stock[productID])
}

func TestStockGateway_InsufficientStock(t *testing.T) {
	bus, bridge, cfg := newExchangeFixture()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	productID := uuid.New()
	store := &memProductStore{stock: map[uuid.UUID]int32{productID: 1}}
	eventhandler.NewStockHandler(store, bus, logger).Register()
	bridge.RouteResponses("stock.deduction.completed")

	g := NewStockGateway(bridge, cfg)

	_, err := g.Deduct(context.Background(), uuid.New(), productID, 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)
	assert.Equal(t, int32(1), store.stock[productID])
}

func TestBalanceGateway_RoundTrip(t *testing.T) {
	bus, bridge, cfg := newExchangeFixture()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userID := uuid.New()
	store := &memBalanceStore{balances: map[uuid.UUID]int64{userID: 10000}}
	eventhandler.NewBalanceHandler(store, bus, logger).Register()
	bridge.RouteResponses("balance.deduction.completed")

	g := NewBalanceGateway(bridge, cfg)

	remaining, err := g.Deduct(context.Background(), uuid.New(), userID, 4000)
	require.NoError(t, err)
	assert.Equal(t, int64(6000), remaining)

	_, err = g.Deduct(context.Background(), uuid.New(), userID, 60000)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
}

type memUserCouponStore struct {
	mu       sync.Mutex
	discount int64
	used     bool
}

func (s *memUserCouponStore) UseCoupon(_ context.Context, _, _ uuid.UUID, _ time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.used {
		return 0, errs.New("coupon already used")
	}
	s.used = true
	return s.discount, nil
}

func (s *memUserCouponStore) RevertCouponUsage(_ context.Context, _, _ uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.used {
		return errs.New("no used coupon to revert")
	}
	s.used = false
	return nil
}

func TestCouponGateway_UseRevertCycle(t *testing.T) {
	bus, bridge, cfg := newExchangeFixture()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := &memUserCouponStore{discount: 1500}
	eventhandler.NewCouponHandler(store, bus, clock.NewRealClock(), logger).Register()
	bridge.RouteResponses(
		"coupon.usage.completed",
		"coupon.restoration.completed",
	)

	g := NewCouponGateway(bridge, cfg)

	discount, err := g.Use(context.Background(), uuid.New(), uuid.New(), uuid.New(), 20000)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), discount)

	_, err = g.Use(context.Background(), uuid.New(), uuid.New(), uuid.New(), 20000)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrCouponUnavailable)

	require.NoError(t, g.Restore(context.Background(), uuid.New(), uuid.New(), uuid.New(), "balance deduction failed"))

	discount, err = g.Use(context.Background(), uuid.New(), uuid.New(), uuid.New(), 20000)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), discount)
}

func TestStockGateway_TimeoutWhenNoSubsystem(t *testing.T) {
	_, bridge, _ := newExchangeFixture()
	cfg := config.SagaConfig{StepTimeout: 50 * time.Millisecond, CompensationTimeout: 50 * time.Millisecond}

	g := NewStockGateway(bridge, cfg)

	_, err := g.Deduct(context.Background(), uuid.New(), uuid.New(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConcurrencyTimeout)
}
