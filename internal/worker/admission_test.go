package worker

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
	"ordersaga/internal/usecase/commands"
	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdmitter grants until remaining stock runs out and records the order
// in which users were admitted.
type fakeAdmitter struct {
	remaining int
	admitted  []uuid.UUID
	err       error
}

func (f *fakeAdmitter) EnqueueIssuance(context.Context, uuid.UUID, uuid.UUID) (*commands.EnqueueResult, error) {
	panic("not used by the worker")
}

func (f *fakeAdmitter) TryAdmit(_ context.Context, _, userID uuid.UUID) error {
	if f.err != nil {
		return f.err
	}
	if f.remaining <= 0 {
		return errs.Mark(errs.New("coupon exhausted"), errs.ErrCouponExhausted)
	}
	f.remaining--
	f.admitted = append(f.admitted, userID)
	return nil
}

func newWorkerFixture(t *testing.T, admitter commands.CouponCommands) (*memqueue.Store, *AdmissionWorker) {
	t.Helper()

	queue := memqueue.NewStore()
	w := NewAdmissionWorker(
		queue,
		admitter,
		config.AdmissionConfig{
			DrainInterval: 10 * time.Millisecond,
			BatchSize:     10,
		},
		clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return queue, w
}

func enqueue(t *testing.T, queue shared.AdmissionQueue, couponID uuid.UUID, userIDs ...uuid.UUID) {
	t.Helper()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, userID := range userIDs {
		pushed, err := queue.Push(context.Background(), couponID, userID, base.Add(time.Duration(i)*time.Millisecond))
		require.NoError(t, err)
		require.True(t, pushed)
	}
}

func TestDrainOnce_AdmitsInArrivalOrder(t *testing.T) {
	admitter := &fakeAdmitter{remaining: 10}
	queue, w := newWorkerFixture(t, admitter)

	couponID := uuid.New()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	enqueue(t, queue, couponID, a, b, c)

	w.DrainOnce(context.Background())

	assert.Equal(t, []uuid.UUID{a, b, c}, admitter.admitted)
	for _, userID := range []uuid.UUID{a, b, c} {
		result, err := queue.GetResult(context.Background(), couponID, userID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Success)
		assert.Equal(t, MsgIssued, result.Message)
	}
}

func TestDrainOnce_ExhaustionShortCircuitsRest(t *testing.T) {
	admitter := &fakeAdmitter{remaining: 1}
	queue, w := newWorkerFixture(t, admitter)

	couponID := uuid.New()
	winner, loser1, loser2 := uuid.New(), uuid.New(), uuid.New()
	enqueue(t, queue, couponID, winner, loser1, loser2)

	w.DrainOnce(context.Background())

	// Only the first user hit the admission path; the rest were answered
	// from the exhausted short-circuit.
	assert.Equal(t, []uuid.UUID{winner}, admitter.admitted)

	result, err := queue.GetResult(context.Background(), couponID, winner)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)

	for _, userID := range []uuid.UUID{loser1, loser2} {
		result, err := queue.GetResult(context.Background(), couponID, userID)
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.False(t, result.Success)
		assert.Equal(t, MsgExhausted, result.Message)
	}
}

func TestDrainOnce_BatchLimit(t *testing.T) {
	admitter := &fakeAdmitter{remaining: 100}
	queue, w := newWorkerFixture(t, admitter)

	couponID := uuid.New()
	users := make([]uuid.UUID, 15)
	for i := range users {
		users[i] = uuid.New()
	}
	enqueue(t, queue, couponID, users...)

	w.DrainOnce(context.Background())
	assert.Len(t, admitter.admitted, 10)

	w.DrainOnce(context.Background())
	assert.Len(t, admitter.admitted, 15)
	assert.Equal(t, users, admitter.admitted)
}

func TestDrainOnce_LockWaitFailureIsTransientMessage(t *testing.T) {
	admitter := &fakeAdmitter{err: errs.Mark(errs.New("lock wait expired"), errs.ErrLockUnavailable)}
	queue, w := newWorkerFixture(t, admitter)

	couponID := uuid.New()
	userID := uuid.New()
	enqueue(t, queue, couponID, userID)

	w.DrainOnce(context.Background())

	result, err := queue.GetResult(context.Background(), couponID, userID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, MsgUnavailable, result.Message)
}

func TestDrainOnce_ResultsAreIdempotentReads(t *testing.T) {
	admitter := &fakeAdmitter{remaining: 1}
	queue, w := newWorkerFixture(t, admitter)

	couponID := uuid.New()
	userID := uuid.New()
	enqueue(t, queue, couponID, userID)

	w.DrainOnce(context.Background())

	first, err := queue.GetResult(context.Background(), couponID, userID)
	require.NoError(t, err)
	second, err := queue.GetResult(context.Background(), couponID, userID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// memCouponRepo backs the full-stack bounded admission test with a live
// counter row.
type memCouponRepo struct {
	mu          sync.Mutex
	couponID    uuid.UUID
	issuedCount int32
	maxCount    int32
	status      coupon.Status
}

func (r *memCouponRepo) FindForIssuance(_ context.Context, couponID uuid.UUID) (*coupon.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if couponID != r.couponID {
		return nil, errs.Mark(errs.New("coupon not found"), errs.ErrCouponNotFound)
	}
	return coupon.New(r.couponID, "launch", 1000, r.issuedCount, r.maxCount, r.status)
}

func (r *memCouponRepo) SaveIssuance(_ context.Context, c *coupon.Coupon, _ *coupon.UserCoupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issuedCount = c.IssuedCount()
	r.status = c.Status()
	return nil
}

func TestBoundedAdmission_ExactlyMaxCountGranted(t *testing.T) {
	const maxCount = 5
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.AdmissionConfig{
		DrainInterval: 10 * time.Millisecond,
		BatchSize:     10,
		LockWait:      time.Second,
		LockHold:      5 * time.Second,
	}

	couponID := uuid.New()
	repo := &memCouponRepo{couponID: couponID, maxCount: maxCount, status: coupon.StatusActive}
	queue := memqueue.NewStore()
	admission := commands.NewCouponUseCase(repo, queue, memlock.NewService(), cfg, clock.NewRealClock(), logger)
	w := NewAdmissionWorker(queue, admission, cfg, clock.NewRealClock(), logger)

	users := make([]uuid.UUID, 10)
	for i := range users {
		users[i] = uuid.New()
		result, err := admission.EnqueueIssuance(context.Background(), couponID, users[i])
		require.NoError(t, err)
		require.True(t, result.Accepted)
	}

	w.DrainOnce(context.Background())

	granted, denied := 0, 0
	for _, userID := range users {
		result, err := queue.GetResult(context.Background(), couponID, userID)
		require.NoError(t, err)
		require.NotNil(t, result)
		if result.Success {
			granted++
		} else {
			denied++
			assert.Equal(t, MsgExhausted, result.Message)
		}
	}
	assert.Equal(t, maxCount, granted)
	assert.Equal(t, 10-maxCount, denied)
	assert.Equal(t, int32(maxCount), repo.issuedCount)
	assert.Equal(t, coupon.StatusExhausted, repo.status)

	// The first maxCount arrivals are the winners.
	for _, userID := range users[:maxCount] {
		result, err := queue.GetResult(context.Background(), couponID, userID)
		require.NoError(t, err)
		assert.True(t, result.Success)
	}
}

func TestStartStop(t *testing.T) {
	admitter := &fakeAdmitter{remaining: 10}
	queue, w := newWorkerFixture(t, admitter)

	couponID := uuid.New()
	userID := uuid.New()
	enqueue(t, queue, couponID, userID)

	w.Start()

	require.Eventually(t, func() bool {
		result, err := queue.GetResult(context.Background(), couponID, userID)
		return err == nil && result != nil
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
}
