package commands

import (
	"context"
	"fmt"
	"log/slog"

	"ordersaga/internal/domain/coupon"
	"ordersaga/internal/pkg/clock"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
)

// EnqueueResult tells a requester whether they joined the waiting line and
// where they stand in it.
type EnqueueResult struct {
	Accepted bool
	Position int64
}

type CouponCommands interface {
	// EnqueueIssuance appends the user to the coupon's FIFO queue. A user who
	// already waits or already has an outcome is not enqueued twice.
	EnqueueIssuance(ctx context.Context, couponID, userID uuid.UUID) (*EnqueueResult, error)

	// TryAdmit grants one unit of the coupon under the issuance lock. It
	// returns nil on grant, ErrCouponExhausted when stock ran out,
	// ErrLockUnavailable when the lock wait expired (a transient condition,
	// the caller may retry), or ErrCouponNotFound.
	TryAdmit(ctx context.Context, couponID, userID uuid.UUID) error
}

type couponUseCaseImpl struct {
	couponRepo CouponRepository
	queue      shared.AdmissionQueue
	locks      shared.LockService
	cfg        config.AdmissionConfig
	clock      clock.Clock
	logger     *slog.Logger
}

func NewCouponUseCase(
	couponRepo CouponRepository,
	queue shared.AdmissionQueue,
	locks shared.LockService,
	cfg config.AdmissionConfig,
	clock clock.Clock,
	logger *slog.Logger,
) CouponCommands {
	return &couponUseCaseImpl{
		couponRepo: couponRepo,
		queue:      queue,
		locks:      locks,
		cfg:        cfg,
		clock:      clock,
		logger:     logger,
	}
}

func (u *couponUseCaseImpl) EnqueueIssuance(ctx context.Context, couponID, userID uuid.UUID) (*EnqueueResult, error) {
	pushed, err := u.queue.Push(ctx, couponID, userID, u.clock.Now())
	if err != nil {
		return nil, errs.Wrap(err, "failed to enqueue issuance request")
	}

	position, waiting, err := u.queue.Position(ctx, couponID, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read queue position")
	}
	if !pushed {
		if waiting {
			return &EnqueueResult{Accepted: false, Position: position}, nil
		}
		return &EnqueueResult{Accepted: false}, nil
	}
	return &EnqueueResult{Accepted: true, Position: position}, nil
}

func issuanceLockKey(couponID uuid.UUID) string {
	return fmt.Sprintf("coupon:issue:%s", couponID)
}

func (u *couponUseCaseImpl) TryAdmit(ctx context.Context, couponID, userID uuid.UUID) error {
	key := issuanceLockKey(couponID)

	token, ok, err := u.locks.Acquire(ctx, key, u.cfg.LockWait, u.cfg.LockHold)
	if err != nil {
		return errs.Wrap(err, "failed to acquire issuance lock")
	}
	if !ok {
		return errs.Mark(
			errs.Newf("issuance lock wait expired for coupon %s", couponID),
			errs.ErrLockUnavailable)
	}
	defer func() {
		if err := u.locks.Release(ctx, key, token); err != nil {
			u.logger.Warn("issuance lock release failed", "coupon_id", couponID, "error", err)
		}
	}()

	c, err := u.couponRepo.FindForIssuance(ctx, couponID)
	if err != nil {
		return err
	}

	if err := c.RecordIssuance(); err != nil {
		return errs.Mark(err, errs.ErrCouponExhausted)
	}
	uc := coupon.NewUserCoupon(userID, c, u.clock.Now())

	if err := u.couponRepo.SaveIssuance(ctx, c, uc); err != nil {
		return errs.Wrap(err, "failed to persist coupon issuance")
	}
	return nil
}
