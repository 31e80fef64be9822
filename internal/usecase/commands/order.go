package commands

import (
	"context"
	"log/slog"
	"time"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/pkg/clock"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/pkg/errs"

	"github.com/google/uuid"
)

type CreateOrderCommand struct {
	UserID       uuid.UUID
	UserCouponID *uuid.UUID
	Items        []OrderItemCommand
}

type OrderItemCommand struct {
	ProductID uuid.UUID
	Quantity  int32
}

type OrderItemView struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int32
	UnitPriceCents  int64
	TotalPriceCents int64
}

type OrderView struct {
	ID                    uuid.UUID
	UserID                uuid.UUID
	Items                 []OrderItemView
	TotalAmountCents      int64
	DiscountAmountCents   int64
	DiscountedAmountCents int64
	Status                order.Status
	OrderedAt             time.Time
}

// CreateOrderResult always reports the saga outcome; business failures are
// carried in the result rather than a bare error so callers can distinguish
// "order rejected" from "could not even try".
type CreateOrderResult struct {
	Success      bool
	Order        *OrderView
	ErrorMessage string
	// Cause is nil on success; otherwise it is marked with one of the errs
	// sentinels for classification.
	Cause error
}

type OrderCommands interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) *CreateOrderResult
}

type orderUseCaseImpl struct {
	userRepo  UserRepository
	orderRepo OrderRepository
	stock     StockGateway
	balance   BalanceGateway
	coupons   CouponGateway
	publisher EventPublisher
	cfg       config.SagaConfig
	clock     clock.Clock
	logger    *slog.Logger
}

func NewOrderUseCase(
	userRepo UserRepository,
	orderRepo OrderRepository,
	stock StockGateway,
	balance BalanceGateway,
	coupons CouponGateway,
	publisher EventPublisher,
	cfg config.SagaConfig,
	clock clock.Clock,
	logger *slog.Logger,
) OrderCommands {
	return &orderUseCaseImpl{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		stock:     stock,
		balance:   balance,
		coupons:   coupons,
		publisher: publisher,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
	}
}

// CreateOrder runs the ordering saga: validate, deduct stock per item, use
// the coupon when one is attached, deduct the balance, then persist. A failed
// step compensates every step already applied, in reverse order, before the
// order is marked FAILED.
func (u *orderUseCaseImpl) CreateOrder(ctx context.Context, cmd CreateOrderCommand) *CreateOrderResult {
	if err := u.validate(ctx, cmd); err != nil {
		return failure(nil, err)
	}

	ord := order.New(cmd.UserID, cmd.UserCouponID, u.clock.Now())
	if err := ord.BeginStockDeduction(); err != nil {
		return failure(ord, errs.Wrap(err, "begin stock deduction"))
	}

	deducted, err := u.deductStock(ctx, ord, cmd.Items)
	if err != nil {
		u.compensate(ctx, ord, deducted, false, err.Error())
		ord.Fail(err.Error())
		return failure(ord, err)
	}

	couponUsed := false
	if cmd.UserCouponID != nil {
		if err := ord.BeginCouponUsage(); err != nil {
			return failure(ord, errs.Wrap(err, "begin coupon usage"))
		}
		discount, err := u.coupons.Use(ctx, ord.ID(), cmd.UserID, *cmd.UserCouponID, ord.TotalAmountCents())
		if err != nil {
			u.compensate(ctx, ord, deducted, false, err.Error())
			ord.Fail(err.Error())
			return failure(ord, err)
		}
		ord.ApplyDiscount(discount)
		couponUsed = true
	}

	if err := ord.BeginBalanceDeduction(); err != nil {
		return failure(ord, errs.Wrap(err, "begin balance deduction"))
	}
	if _, err := u.balance.Deduct(ctx, ord.ID(), cmd.UserID, ord.DiscountedAmountCents()); err != nil {
		u.compensate(ctx, ord, deducted, couponUsed, err.Error())
		ord.Fail(err.Error())
		return failure(ord, err)
	}

	if err := ord.Commit(); err != nil {
		return failure(ord, errs.Wrap(err, "commit order"))
	}
	if err := u.orderRepo.Save(ctx, ord); err != nil {
		// Deductions are already applied and are NOT rolled back here; the
		// order record is the only thing missing. Reconciliation works off
		// this log line.
		u.logger.Error("order persistence failed after all deductions",
			"order_id", ord.ID(),
			"user_id", ord.UserID(),
			"error", err)
		return failure(ord, errs.Mark(err, errs.ErrOrderPersistence))
	}

	u.notifyDownstream(ctx, ord)

	return &CreateOrderResult{
		Success: true,
		Order:   newOrderView(ord),
	}
}

func (u *orderUseCaseImpl) validate(ctx context.Context, cmd CreateOrderCommand) error {
	if len(cmd.Items) == 0 {
		return errs.Mark(order.ErrNoItems, errs.ErrValidation)
	}
	for _, item := range cmd.Items {
		if item.Quantity <= 0 {
			return errs.Mark(order.ErrInvalidQuantity, errs.ErrValidation)
		}
	}

	exists, err := u.userRepo.Exists(ctx, cmd.UserID)
	if err != nil {
		return errs.Wrap(err, "failed to look up user")
	}
	if !exists {
		return errs.Mark(errs.Newf("user not found: %s", cmd.UserID), errs.ErrUserNotFound)
	}
	return nil
}

func (u *orderUseCaseImpl) deductStock(ctx context.Context, ord *order.Order, items []OrderItemCommand) ([]OrderItemCommand, error) {
	deducted := make([]OrderItemCommand, 0, len(items))
	for _, item := range items {
		result, err := u.stock.Deduct(ctx, ord.ID(), item.ProductID, item.Quantity)
		if err != nil {
			return deducted, err
		}
		deducted = append(deducted, item)
		ord.AddItem(order.NewItem(item.ProductID, result.ProductName, item.Quantity, result.UnitPriceCents))
	}
	return deducted, nil
}

// compensate restores every applied deduction in reverse order. Compensation
// is best effort: a restoration failure is logged and the remaining ones are
// still attempted, because leaving two resources stranded is worse than one.
func (u *orderUseCaseImpl) compensate(ctx context.Context, ord *order.Order, deducted []OrderItemCommand, couponUsed bool, reason string) {
	if len(deducted) == 0 && !couponUsed {
		return
	}
	if err := ord.BeginCompensation(); err != nil {
		u.logger.Error("cannot enter compensation",
			"order_id", ord.ID(), "status", ord.Status(), "error", err)
	}

	if couponUsed && ord.UserCouponID() != nil {
		if err := u.coupons.Restore(ctx, ord.ID(), ord.UserID(), *ord.UserCouponID(), reason); err != nil {
			u.logger.Error("coupon restoration failed",
				"order_id", ord.ID(),
				"user_coupon_id", *ord.UserCouponID(),
				"error", errs.Mark(err, errs.ErrCompensationFailed))
		}
	}

	for i := len(deducted) - 1; i >= 0; i-- {
		item := deducted[i]
		if err := u.stock.Restore(ctx, ord.ID(), item.ProductID, item.Quantity, reason); err != nil {
			u.logger.Error("stock restoration failed",
				"order_id", ord.ID(),
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", errs.Mark(err, errs.ErrCompensationFailed))
		}
	}
}

// notifyDownstream emits the ranking and analytics events. Failures are
// logged only; the order is already committed.
func (u *orderUseCaseImpl) notifyDownstream(ctx context.Context, ord *order.Order) {
	for _, item := range ord.Items() {
		event := ProductRankingUpdate{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			OrderedAt: ord.OrderedAt(),
		}
		if err := u.publisher.Publish(ctx, event); err != nil {
			u.logger.Warn("ranking event publish failed", "order_id", ord.ID(), "error", err)
		}
	}

	transfer := DataPlatformTransfer{
		OrderID:               ord.ID(),
		UserID:                ord.UserID(),
		TotalAmountCents:      ord.TotalAmountCents(),
		DiscountedAmountCents: ord.DiscountedAmountCents(),
		OrderedAt:             ord.OrderedAt(),
	}
	if err := u.publisher.Publish(ctx, transfer); err != nil {
		u.logger.Warn("data platform event publish failed", "order_id", ord.ID(), "error", err)
	}
}

func failure(ord *order.Order, cause error) *CreateOrderResult {
	result := &CreateOrderResult{
		Success:      false,
		ErrorMessage: cause.Error(),
		Cause:        cause,
	}
	if ord != nil {
		result.Order = newOrderView(ord)
	}
	return result
}

func newOrderView(ord *order.Order) *OrderView {
	items := make([]OrderItemView, 0, len(ord.Items()))
	for _, item := range ord.Items() {
		items = append(items, OrderItemView{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			TotalPriceCents: item.TotalPriceCents,
		})
	}
	return &OrderView{
		ID:                    ord.ID(),
		UserID:                ord.UserID(),
		Items:                 items,
		TotalAmountCents:      ord.TotalAmountCents(),
		DiscountAmountCents:   ord.DiscountAmountCents(),
		DiscountedAmountCents: ord.DiscountedAmountCents(),
		Status:                ord.Status(),
		OrderedAt:             ord.OrderedAt(),
	}
}
