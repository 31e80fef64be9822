package order

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_HappyPathTransitions(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())
	assert.Equal(t, StatusValidating, o.Status())

	require.NoError(t, o.BeginStockDeduction())
	assert.Equal(t, StatusStockPending, o.Status())

	require.NoError(t, o.BeginBalanceDeduction())
	assert.Equal(t, StatusBalancePending, o.Status())

	require.NoError(t, o.Commit())
	assert.Equal(t, StatusCommitted, o.Status())
}

func TestOrder_CouponStageTransitions(t *testing.T) {
	couponID := uuid.New()
	o := New(uuid.New(), &couponID, time.Now())

	require.NoError(t, o.BeginStockDeduction())
	require.NoError(t, o.BeginCouponUsage())
	assert.Equal(t, StatusCouponPending, o.Status())

	require.NoError(t, o.BeginBalanceDeduction())
	require.NoError(t, o.Commit())
}

func TestOrder_InvalidTransitions(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())

	assert.ErrorIs(t, o.Commit(), ErrInvalidTransition)
	assert.ErrorIs(t, o.BeginBalanceDeduction(), ErrInvalidTransition)

	require.NoError(t, o.BeginStockDeduction())
	require.NoError(t, o.BeginBalanceDeduction())
	require.NoError(t, o.Commit())

	assert.ErrorIs(t, o.BeginCompensation(), ErrInvalidTransition)
}

func TestOrder_CompensationEndsFailed(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())
	require.NoError(t, o.BeginStockDeduction())
	require.NoError(t, o.BeginCompensation())
	assert.Equal(t, StatusCompensating, o.Status())

	o.Fail("insufficient balance")
	assert.Equal(t, StatusFailed, o.Status())
	assert.Equal(t, "insufficient balance", o.FailureReason())
}

func TestOrder_FailKeepsFirstReason(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())
	o.Fail("first")
	o.Fail("second")
	assert.Equal(t, "first", o.FailureReason())
}

func TestOrder_AmountAccumulation(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())

	o.AddItem(NewItem(uuid.New(), "keyboard", 2, 5000))
	o.AddItem(NewItem(uuid.New(), "mouse", 1, 10000))

	assert.Equal(t, int64(20000), o.TotalAmountCents())
	assert.Equal(t, int64(20000), o.DiscountedAmountCents())
}

func TestOrder_ApplyDiscount(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())
	o.AddItem(NewItem(uuid.New(), "keyboard", 2, 10000))

	o.ApplyDiscount(2000)
	assert.Equal(t, int64(2000), o.DiscountAmountCents())
	assert.Equal(t, int64(18000), o.DiscountedAmountCents())
}

func TestOrder_DiscountNeverNegative(t *testing.T) {
	o := New(uuid.New(), nil, time.Now())
	o.AddItem(NewItem(uuid.New(), "sticker", 1, 500))

	o.ApplyDiscount(3000)
	assert.Equal(t, int64(0), o.DiscountedAmountCents())
}

func TestNewItem_TotalPrice(t *testing.T) {
	item := NewItem(uuid.New(), "keyboard", 3, 2500)
	assert.Equal(t, int64(7500), item.TotalPriceCents)
}
