package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/eventbus"
	"ordersaga/internal/pkg/clock"

	"github.com/google/uuid"
)

// UserCouponStore is what the coupon handler needs from persistence.
type UserCouponStore interface {
	UseCoupon(ctx context.Context, userID, userCouponID uuid.UUID, usedAt time.Time) (int64, error)
	RevertCouponUsage(ctx context.Context, userID, userCouponID uuid.UUID) error
}

type CouponHandler struct {
	store  UserCouponStore
	bus    *eventbus.Bus
	clock  clock.Clock
	logger *slog.Logger
}

func NewCouponHandler(store UserCouponStore, bus *eventbus.Bus, clock clock.Clock, logger *slog.Logger) *CouponHandler {
	return &CouponHandler{store: store, bus: bus, clock: clock, logger: logger}
}

func (h *CouponHandler) Register() {
	h.bus.Subscribe(order.KindCouponUsageRequested, h.handleUsage)
	h.bus.Subscribe(order.KindCouponRestorationRequested, h.handleRestoration)
}

func (h *CouponHandler) handleUsage(event eventbus.Event) {
	request, ok := event.(*order.CouponUsageRequested)
	if !ok {
		h.logger.Error("unexpected event type", "kind", event.Kind())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	response := &order.CouponUsageCompleted{CorrID: request.CorrID}
	discount, err := h.store.UseCoupon(ctx, request.UserID, request.UserCouponID, h.clock.Now())
	if err != nil {
		response.ErrorMessage = err.Error()
	} else {
		response.Success = true
		response.DiscountAmountCents = discount
	}
	h.bus.Publish(response)
}

func (h *CouponHandler) handleRestoration(event eventbus.Event) {
	request, ok := event.(*order.CouponRestorationRequested)
	if !ok {
		h.logger.Error("unexpected event type", "kind", event.Kind())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	response := &order.CouponRestorationCompleted{CorrID: request.CorrID}
	if err := h.store.RevertCouponUsage(ctx, request.UserID, request.UserCouponID); err != nil {
		h.logger.Error("coupon restoration failed",
			"order_id", request.OrderID,
			"user_coupon_id", request.UserCouponID,
			"error", err)
		response.ErrorMessage = err.Error()
	} else {
		response.Success = true
	}
	h.bus.Publish(response)
}
