package eventhandler

import (
	"context"
	"log/slog"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/eventbus"

	"github.com/google/uuid"
)

// BalanceStore is what the balance handler needs from persistence.
type BalanceStore interface {
	DeductBalance(ctx context.Context, userID uuid.UUID, amountCents int64) (int64, error)
}

type BalanceHandler struct {
	store  BalanceStore
	bus    *eventbus.Bus
	logger *slog.Logger
}

func NewBalanceHandler(store BalanceStore, bus *eventbus.Bus, logger *slog.Logger) *BalanceHandler {
	return &BalanceHandler{store: store, bus: bus, logger: logger}
}

func (h *BalanceHandler) Register() {
	h.bus.Subscribe(order.KindBalanceDeductionRequested, h.handleDeduction)
}

func (h *BalanceHandler) handleDeduction(event eventbus.Event) {
	request, ok := event.(*order.BalanceDeductionRequested)
	if !ok {
		h.logger.Error("unexpected event type", "kind", event.Kind())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	response := &order.BalanceDeductionCompleted{CorrID: request.CorrID}
	remaining, err := h.store.DeductBalance(ctx, request.UserID, request.AmountCents)
	if err != nil {
		response.ErrorMessage = err.Error()
	} else {
		response.Success = true
		response.RemainingBalanceCents = remaining
	}
	h.bus.Publish(response)
}
