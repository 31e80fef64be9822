package gateway

import (
	"context"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/eventbus"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"
	"ordersaga/internal/usecase/commands"

	"github.com/google/uuid"
)

type CouponGateway struct {
	bridge *eventbus.Bridge
	cfg    config.SagaConfig
}

func NewCouponGateway(bridge *eventbus.Bridge, cfg config.SagaConfig) commands.CouponGateway {
	return &CouponGateway{bridge: bridge, cfg: cfg}
}

func (g *CouponGateway) Use(ctx context.Context, orderID, userID, userCouponID uuid.UUID, totalAmountCents int64) (int64, error) {
	request := &order.CouponUsageRequested{
		CorrID:           uuid.NewString(),
		OrderID:          orderID,
		UserID:           userID,
		UserCouponID:     userCouponID,
		TotalAmountCents: totalAmountCents,
	}

	response, err := g.bridge.PublishAndAwait(ctx, request, order.KindCouponUsageCompleted, g.cfg.StepTimeout)
	if err != nil {
		return 0, err
	}

	completed, ok := response.(*order.CouponUsageCompleted)
	if !ok {
		return 0, errs.Mark(errs.Newf("unexpected response type %T", response), errs.ErrUnexpectedResponse)
	}
	if !completed.Success {
		return 0, errs.Mark(errs.New(completed.ErrorMessage), errs.ErrCouponUnavailable)
	}
	return completed.DiscountAmountCents, nil
}

func (g *CouponGateway) Restore(ctx context.Context, orderID, userID, userCouponID uuid.UUID, reason string) error {
	request := &order.CouponRestorationRequested{
		CorrID:       uuid.NewString(),
		OrderID:      orderID,
		UserID:       userID,
		UserCouponID: userCouponID,
		Reason:       reason,
	}

	response, err := g.bridge.PublishAndAwait(ctx, request, order.KindCouponRestorationCompleted, g.cfg.CompensationTimeout)
	if err != nil {
		return err
	}

	completed, ok := response.(*order.CouponRestorationCompleted)
	if !ok {
		return errs.Mark(errs.Newf("unexpected response type %T", response), errs.ErrUnexpectedResponse)
	}
	if !completed.Success {
		return errs.Mark(errs.New(completed.ErrorMessage), errs.ErrCompensationFailed)
	}
	return nil
}
