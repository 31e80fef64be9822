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

// StockGateway talks to the inventory subsystem over the event bridge. Every
// call uses a fresh correlation id, so retries never collide with a stale
// in-flight request.
type StockGateway struct {
	bridge *eventbus.Bridge
	cfg    config.SagaConfig
}

func NewStockGateway(bridge *eventbus.Bridge, cfg config.SagaConfig) commands.StockGateway {
	return &StockGateway{bridge: bridge, cfg: cfg}
}

func (g *StockGateway) Deduct(ctx context.Context, orderID, productID uuid.UUID, quantity int32) (*commands.StockDeduction, error) {
	request := &order.StockDeductionRequested{
		CorrID:    uuid.NewString(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
	}

	response, err := g.bridge.PublishAndAwait(ctx, request, order.KindStockDeductionCompleted, g.cfg.StepTimeout)
	if err != nil {
		return nil, err
	}

	completed, ok := response.(*order.StockDeductionCompleted)
	if !ok {
		return nil, errs.Mark(errs.Newf("unexpected response type %T", response), errs.ErrUnexpectedResponse)
	}
	if !completed.Success {
		return nil, errs.Mark(errs.New(completed.ErrorMessage), errs.ErrInsufficientStock)
	}
	return &commands.StockDeduction{
		ProductName:    completed.ProductName,
		UnitPriceCents: completed.UnitPriceCents,
	}, nil
}

func (g *StockGateway) Restore(ctx context.Context, orderID, productID uuid.UUID, quantity int32, reason string) error {
	request := &order.StockRestorationRequested{
		CorrID:    uuid.NewString(),
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		Reason:    reason,
	}

	response, err := g.bridge.PublishAndAwait(ctx, request, order.KindStockRestorationCompleted, g.cfg.CompensationTimeout)
	if err != nil {
		return err
	}

	completed, ok := response.(*order.StockRestorationCompleted)
	if !ok {
		return errs.Mark(errs.Newf("unexpected response type %T", response), errs.ErrUnexpectedResponse)
	}
	if !completed.Success {
		return errs.Mark(errs.New(completed.ErrorMessage), errs.ErrCompensationFailed)
	}
	return nil
}
