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

type BalanceGateway struct {
	bridge *eventbus.Bridge
	cfg    config.SagaConfig
}

func NewBalanceGateway(bridge *eventbus.Bridge, cfg config.SagaConfig) commands.BalanceGateway {
	return &BalanceGateway{bridge: bridge, cfg: cfg}
}

func (g *BalanceGateway) Deduct(ctx context.Context, orderID, userID uuid.UUID, amountCents int64) (int64, error) {
	request := &order.BalanceDeductionRequested{
		CorrID:      uuid.NewString(),
		OrderID:     orderID,
		UserID:      userID,
		AmountCents: amountCents,
	}

	response, err := g.bridge.PublishAndAwait(ctx, request, order.KindBalanceDeductionCompleted, g.cfg.StepTimeout)
	if err != nil {
		return 0, err
	}

	completed, ok := response.(*order.BalanceDeductionCompleted)
	if !ok {
		return 0, errs.Mark(errs.Newf("unexpected response type %T", response), errs.ErrUnexpectedResponse)
	}
	if !completed.Success {
		return 0, errs.Mark(errs.New(completed.ErrorMessage), errs.ErrInsufficientBalance)
	}
	return completed.RemainingBalanceCents, nil
}
