package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordersaga/internal/pkg/clock"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/commands"
	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
)

// Result messages exposed to pollers.
const (
	MsgIssued      = "coupon issued"
	MsgExhausted   = "coupon exhausted"
	MsgNotFound    = "coupon not found"
	MsgUnavailable = "issuance temporarily unavailable"
)

// AdmissionWorker drains the coupon issuance queues on a fixed interval,
// admitting waiting users in arrival order and recording a pollable result
// for each of them.
type AdmissionWorker struct {
	queue   shared.AdmissionQueue
	coupons commands.CouponCommands
	cfg     config.AdmissionConfig
	clock   clock.Clock
	logger  *slog.Logger

	// exhausted coupons seen by this process; once a coupon runs out the
	// remaining batch entries are answered without touching the lock again.
	// Only the drain goroutine reads or writes it.
	exhausted map[uuid.UUID]bool

	stop chan struct{}
	done chan struct{}
}

func NewAdmissionWorker(
	queue shared.AdmissionQueue,
	coupons commands.CouponCommands,
	cfg config.AdmissionConfig,
	clock clock.Clock,
	logger *slog.Logger,
) *AdmissionWorker {
	return &AdmissionWorker{
		queue:     queue,
		coupons:   coupons,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
		exhausted: make(map[uuid.UUID]bool),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the drain loop. It returns immediately; Stop shuts the loop
// down and waits for the in-flight drain to finish.
func (w *AdmissionWorker) Start() {
	go w.run()
}

func (w *AdmissionWorker) Stop(ctx context.Context) error {
	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AdmissionWorker) run() {
	defer close(w.done)

	ticker := time.NewTicker(w.cfg.DrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.DrainOnce(context.Background())
		}
	}
}

// DrainOnce processes one batch from every active queue. It is exported so
// tests can drive the worker without the ticker.
func (w *AdmissionWorker) DrainOnce(ctx context.Context) {
	couponIDs, err := w.queue.ActiveQueues(ctx)
	if err != nil {
		w.logger.Error("failed to list active issuance queues", "error", err)
		return
	}

	for _, couponID := range couponIDs {
		w.drainQueue(ctx, couponID)
	}
}

func (w *AdmissionWorker) drainQueue(ctx context.Context, couponID uuid.UUID) {
	userIDs, err := w.queue.PopBatch(ctx, couponID, w.cfg.BatchSize)
	if err != nil {
		w.logger.Error("failed to pop issuance batch", "coupon_id", couponID, "error", err)
		return
	}

	for _, userID := range userIDs {
		w.admit(ctx, couponID, userID)
	}
}

func (w *AdmissionWorker) admit(ctx context.Context, couponID, userID uuid.UUID) {
	if w.exhausted[couponID] {
		w.record(ctx, couponID, userID, false, MsgExhausted)
		return
	}

	err := w.coupons.TryAdmit(ctx, couponID, userID)
	switch {
	case err == nil:
		w.record(ctx, couponID, userID, true, MsgIssued)

	case errors.Is(err, errs.ErrCouponExhausted):
		w.exhausted[couponID] = true
		w.record(ctx, couponID, userID, false, MsgExhausted)

	case errors.Is(err, errs.ErrCouponNotFound):
		w.record(ctx, couponID, userID, false, MsgNotFound)

	case errors.Is(err, errs.ErrLockUnavailable):
		w.logger.Warn("issuance lock wait expired",
			"coupon_id", couponID, "user_id", userID)
		w.record(ctx, couponID, userID, false, MsgUnavailable)

	default:
		w.logger.Error("issuance attempt failed",
			"coupon_id", couponID, "user_id", userID, "error", err)
		w.record(ctx, couponID, userID, false, MsgUnavailable)
	}
}

func (w *AdmissionWorker) record(ctx context.Context, couponID, userID uuid.UUID, success bool, message string) {
	result := shared.IssuanceResult{
		CouponID:    couponID,
		UserID:      userID,
		Success:     success,
		Message:     message,
		CompletedAt: w.clock.Now(),
	}
	if err := w.queue.SaveResult(ctx, result); err != nil {
		w.logger.Error("failed to record issuance result",
			"coupon_id", couponID, "user_id", userID, "error", err)
	}
}
