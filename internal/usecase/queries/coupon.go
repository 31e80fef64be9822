package queries

import (
	"context"

	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/shared"

	"github.com/google/uuid"
)

// IssuanceStatus is the pollable view of one issuance request. Exactly one of
// the three shapes applies: a recorded result, a queue position, or neither
// (the request is unknown).
type IssuanceStatus struct {
	Result   *shared.IssuanceResult
	Waiting  bool
	Position int64
}

type CouponQueries interface {
	// IssuanceStatus reports the request's outcome when one is recorded, or
	// the current queue position while it still waits. Polling is idempotent:
	// reading a result does not consume it.
	IssuanceStatus(ctx context.Context, couponID, userID uuid.UUID) (*IssuanceStatus, error)
}

type couponQueriesImpl struct {
	queue shared.AdmissionQueue
}

func NewCouponQueries(queue shared.AdmissionQueue) CouponQueries {
	return &couponQueriesImpl{queue: queue}
}

func (q *couponQueriesImpl) IssuanceStatus(ctx context.Context, couponID, userID uuid.UUID) (*IssuanceStatus, error) {
	result, err := q.queue.GetResult(ctx, couponID, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read issuance result")
	}
	if result != nil {
		return &IssuanceStatus{Result: result}, nil
	}

	position, waiting, err := q.queue.Position(ctx, couponID, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to read queue position")
	}
	return &IssuanceStatus{Waiting: waiting, Position: position}, nil
}
