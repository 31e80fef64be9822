// Package eventhandler hosts the owning subsystems that answer saga requests
// on the event bus. Each handler owns its resource exclusively: nothing else
// writes stock, balances, or coupon usage.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/eventbus"
	"ordersaga/internal/infra/repository"

	"github.com/google/uuid"
)

// handlerTimeout bounds the database work done for one request event. It is
// deliberately shorter than the saga's step timeout so a slow query surfaces
// as a subsystem failure, not a silent bridge timeout.
const handlerTimeout = 4 * time.Second

// ProductStore is what the stock handler needs from persistence.
type ProductStore interface {
	DeductStock(ctx context.Context, productID uuid.UUID, quantity int32) (*repository.ProductSnapshot, error)
	RestoreStock(ctx context.Context, productID uuid.UUID, quantity int32) error
}

type StockHandler struct {
	store  ProductStore
	bus    *eventbus.Bus
	logger *slog.Logger
}

func NewStockHandler(store ProductStore, bus *eventbus.Bus, logger *slog.Logger) *StockHandler {
	return &StockHandler{store: store, bus: bus, logger: logger}
}

func (h *StockHandler) Register() {
	h.bus.Subscribe(order.KindStockDeductionRequested, h.handleDeduction)
	h.bus.Subscribe(order.KindStockRestorationRequested, h.handleRestoration)
}

func (h *StockHandler) handleDeduction(event eventbus.Event) {
	request, ok := event.(*order.StockDeductionRequested)
	if !ok {
		h.logger.Error("unexpected event type", "kind", event.Kind())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	response := &order.StockDeductionCompleted{CorrID: request.CorrID}
	snapshot, err := h.store.DeductStock(ctx, request.ProductID, request.Quantity)
	if err != nil {
		response.ErrorMessage = err.Error()
	} else {
		response.Success = true
		response.ProductName = snapshot.Name
		response.UnitPriceCents = snapshot.PriceCents
	}
	h.bus.Publish(response)
}

func (h *StockHandler) handleRestoration(event eventbus.Event) {
	request, ok := event.(*order.StockRestorationRequested)
	if !ok {
		h.logger.Error("unexpected event type", "kind", event.Kind())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	response := &order.StockRestorationCompleted{CorrID: request.CorrID}
	if err := h.store.RestoreStock(ctx, request.ProductID, request.Quantity); err != nil {
		h.logger.Error("stock restoration failed",
			"order_id", request.OrderID,
			"product_id", request.ProductID,
			"error", err)
		response.ErrorMessage = err.Error()
	} else {
		response.Success = true
	}
	h.bus.Publish(response)
}
