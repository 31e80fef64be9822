package commands

import (
	"context"
	"time"

	"ordersaga/internal/domain/coupon"
	"ordersaga/internal/domain/order"

	"github.com/google/uuid"
)

// StockDeduction is the write-side snapshot returned by a successful stock
// step; the saga needs the catalog data to price the order line.
type StockDeduction struct {
	ProductName    string
	UnitPriceCents int64
}

// StockGateway fronts the inventory subsystem. Deduct blocks until the
// subsystem answers or the step timeout expires; Restore is the compensating
// half and uses the shorter compensation timeout.
type StockGateway interface {
	Deduct(ctx context.Context, orderID, productID uuid.UUID, quantity int32) (*StockDeduction, error)
	Restore(ctx context.Context, orderID, productID uuid.UUID, quantity int32, reason string) error
}

// BalanceGateway fronts the user balance subsystem.
type BalanceGateway interface {
	Deduct(ctx context.Context, orderID, userID uuid.UUID, amountCents int64) (remainingCents int64, err error)
}

// CouponGateway fronts the coupon subsystem for usage during ordering.
type CouponGateway interface {
	Use(ctx context.Context, orderID, userID, userCouponID uuid.UUID, totalAmountCents int64) (discountCents int64, err error)
	Restore(ctx context.Context, orderID, userID, userCouponID uuid.UUID, reason string) error
}

type OrderRepository interface {
	Save(ctx context.Context, o *order.Order) error
}

type UserRepository interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type CouponRepository interface {
	// FindForIssuance loads the coupon's current counter state. The caller
	// must already hold the issuance lock for the coupon.
	FindForIssuance(ctx context.Context, couponID uuid.UUID) (*coupon.Coupon, error)

	// SaveIssuance persists the incremented counter together with the new
	// user coupon in one transaction.
	SaveIssuance(ctx context.Context, c *coupon.Coupon, uc *coupon.UserCoupon) error
}

// NotificationEvent is a fire-and-forget message for downstream consumers.
type NotificationEvent interface {
	Kind() string
}

// EventPublisher ships notification events to the external broker. Delivery
// failures must not fail the order.
type EventPublisher interface {
	Publish(ctx context.Context, event NotificationEvent) error
}

const (
	KindProductRanking       = "product.ranking"
	KindDataPlatformTransfer = "data.platform.transfer"
)

// ProductRankingUpdate feeds the best-seller ranking aggregation.
type ProductRankingUpdate struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int32     `json:"quantity"`
	OrderedAt time.Time `json:"orderedAt"`
}

func (e ProductRankingUpdate) Kind() string { return KindProductRanking }

// DataPlatformTransfer mirrors a committed order to the analytics platform.
type DataPlatformTransfer struct {
	OrderID               uuid.UUID `json:"orderId"`
	UserID                uuid.UUID `json:"userId"`
	TotalAmountCents      int64     `json:"totalAmountCents"`
	DiscountedAmountCents int64     `json:"discountedAmountCents"`
	OrderedAt             time.Time `json:"orderedAt"`
}

func (e DataPlatformTransfer) Kind() string { return KindDataPlatformTransfer }
