package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IssuanceResult is the durable outcome of one coupon issuance request.
// Exactly one result is ever recorded per (coupon, user) pair.
type IssuanceResult struct {
	CouponID    uuid.UUID `json:"couponId"`
	UserID      uuid.UUID `json:"userId"`
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	CompletedAt time.Time `json:"completedAt"`
}

// AdmissionQueue is the FIFO waiting line in front of limited coupon stock,
// plus the result store the drain worker writes into.
type AdmissionQueue interface {
	// Push appends the user to the coupon's queue. It returns false without
	// error when the user already has a pending entry or a recorded result.
	Push(ctx context.Context, couponID, userID uuid.UUID, enqueuedAt time.Time) (bool, error)

	// PopBatch removes and returns up to limit users in arrival order.
	PopBatch(ctx context.Context, couponID uuid.UUID, limit int) ([]uuid.UUID, error)

	// Position returns the 1-based queue position, or ok=false when the user
	// is not waiting.
	Position(ctx context.Context, couponID, userID uuid.UUID) (int64, bool, error)

	// ActiveQueues lists coupons that currently have waiting users.
	ActiveQueues(ctx context.Context) ([]uuid.UUID, error)

	// SaveResult records the outcome once; later writes for the same pair are
	// silently ignored so the first result always wins.
	SaveResult(ctx context.Context, result IssuanceResult) error

	// GetResult returns the recorded outcome, or nil when none exists yet.
	GetResult(ctx context.Context, couponID, userID uuid.UUID) (*IssuanceResult, error)
}

// LockService is a lease-based mutual exclusion primitive keyed by resource.
// Acquire blocks up to wait for the lock and holds it at most hold before the
// lease lapses on its own.
type LockService interface {
	Acquire(ctx context.Context, key string, wait, hold time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}
