package commands

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"ordersaga/internal/domain/coupon"
	"ordersaga/internal/infra/memlock"
	"ordersaga/internal/infra/memqueue"
	"ordersaga/internal/pkg/clock"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCouponRepo emulates the coupon table. It deliberately has no internal
// locking so that a missing issuance lock would corrupt the counter and fail
// the concurrency test.
type fakeCouponRepo struct {
	coupons map[uuid.UUID]couponRow
	issued  []uuid.UUID
}

type couponRow struct {
	name        string
	discount    int64
	issuedCount int32
	maxCount    int32
	status      coupon.Status
}

func (f *fakeCouponRepo) FindForIssuance(_ context.Context, couponID uuid.UUID) (*coupon.Coupon, error) {
	row, ok := f.coupons[couponID]
	if !ok {
		return nil, errs.Mark(errs.New("coupon not found"), errs.ErrCouponNotFound)
	}
	return coupon.New(couponID, row.name, row.discount, row.issuedCount, row.maxCount, row.status)
}

func (f *fakeCouponRepo) SaveIssuance(_ context.Context, c *coupon.Coupon, uc *coupon.UserCoupon) error {
	row := f.coupons[c.ID()]
	row.issuedCount = c.IssuedCount()
	row.status = c.Status()
	f.coupons[c.ID()] = row
	f.issued = append(f.issued, uc.UserID())
	return nil
}

func newCouponFixture(t *testing.T, maxCount int32) (*fakeCouponRepo, uuid.UUID, CouponCommands) {
	t.Helper()

	couponID := uuid.New()
	repo := &fakeCouponRepo{coupons: map[uuid.UUID]couponRow{
		couponID: {name: "launch", discount: 1000, maxCount: maxCount, status: coupon.StatusActive},
	}}

	uc := NewCouponUseCase(
		repo,
		memqueue.NewStore(),
		memlock.NewService(),
		config.AdmissionConfig{
			LockWait: time.Second,
			LockHold: 5 * time.Second,
		},
		clock.NewRealClock(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return repo, couponID, uc
}

func TestTryAdmit_GrantsUntilExhausted(t *testing.T) {
	repo, couponID, uc := newCouponFixture(t, 2)

	require.NoError(t, uc.TryAdmit(context.Background(), couponID, uuid.New()))
	require.NoError(t, uc.TryAdmit(context.Background(), couponID, uuid.New()))

	err := uc.TryAdmit(context.Background(), couponID, uuid.New())
	assert.ErrorIs(t, err, errs.ErrCouponExhausted)
	assert.Equal(t, int32(2), repo.coupons[couponID].issuedCount)
	assert.Equal(t, coupon.StatusExhausted, repo.coupons[couponID].status)
}

func TestTryAdmit_UnknownCoupon(t *testing.T) {
	_, _, uc := newCouponFixture(t, 1)

	err := uc.TryAdmit(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrCouponNotFound)
}

func TestTryAdmit_ConcurrentNeverOverissues(t *testing.T) {
	const maxCount = 5
	repo, couponID, uc := newCouponFixture(t, maxCount)

	var wg sync.WaitGroup
	grants := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := uc.TryAdmit(context.Background(), couponID, uuid.New()); err == nil {
				grants <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(grants)

	granted := 0
	for range grants {
		granted++
	}
	assert.Equal(t, maxCount, granted)
	assert.Equal(t, int32(maxCount), repo.coupons[couponID].issuedCount)
	assert.Len(t, repo.issued, maxCount)
}

func TestEnqueueIssuance_DeduplicatesWaitingUser(t *testing.T) {
	_, couponID, uc := newCouponFixture(t, 1)
	userID := uuid.New()

	first, err := uc.EnqueueIssuance(context.Background(), couponID, userID)
	require.NoError(t, err)
	assert.True(t, first.Accepted)
	assert.Equal(t, int64(1), first.Position)

	second, err := uc.EnqueueIssuance(context.Background(), couponID, userID)
	require.NoError(t, err)
	assert.False(t, second.Accepted)
	assert.Equal(t, int64(1), second.Position)
}

func TestEnqueueIssuance_PositionsAreArrivalOrder(t *testing.T) {
	_, couponID, uc := newCouponFixture(t, 1)

	for i := int64(1); i <= 3; i++ {
		result, err := uc.EnqueueIssuance(context.Background(), couponID, uuid.New())
		require.NoError(t, err)
		assert.True(t, result.Accepted)
		assert.Equal(t, i, result.Position)
	}
}
