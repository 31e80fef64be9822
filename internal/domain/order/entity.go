package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrNoItems           = errors.New("order has no items")
	ErrInvalidQuantity   = errors.New("order item quantity must be positive")
)

type Status string

const (
	StatusValidating     Status = "VALIDATING"
	StatusStockPending   Status = "STOCK_PENDING"
	StatusCouponPending  Status = "COUPON_PENDING"
	StatusBalancePending Status = "BALANCE_PENDING"
	StatusCommitted      Status = "COMMITTED"
	StatusCompensating   Status = "COMPENSATING"
	StatusFailed         Status = "FAILED"
)

// Transitions are strictly forward, with the single COMPENSATING detour from
// an in-flight deduction stage toward FAILED.
var allowedTransitions = map[Status][]Status{
	StatusValidating:     {StatusStockPending, StatusFailed},
	StatusStockPending:   {StatusCouponPending, StatusBalancePending, StatusCompensating, StatusFailed},
	StatusCouponPending:  {StatusBalancePending, StatusCompensating, StatusFailed},
	StatusBalancePending: {StatusCommitted, StatusCompensating, StatusFailed},
	StatusCompensating:   {StatusFailed},
}

type Item struct {
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int32
	UnitPriceCents  int64
	TotalPriceCents int64
}

func NewItem(productID uuid.UUID, productName string, quantity int32, unitPriceCents int64) Item {
	return Item{
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        quantity,
		UnitPriceCents:  unitPriceCents,
		TotalPriceCents: unitPriceCents * int64(quantity),
	}
}

// Order is the saga state for one order creation. It is owned exclusively by
// the coordinator processing it; nothing else mutates it.
type Order struct {
	id                    uuid.UUID
	userID                uuid.UUID
	userCouponID          *uuid.UUID
	items                 []Item
	totalAmountCents      int64
	discountAmountCents   int64
	discountedAmountCents int64
	status                Status
	orderedAt             time.Time
	failureReason         string
}

func New(userID uuid.UUID, userCouponID *uuid.UUID, orderedAt time.Time) *Order {
	return &Order{
		id:           uuid.New(),
		userID:       userID,
		userCouponID: userCouponID,
		status:       StatusValidating,
		orderedAt:    orderedAt,
	}
}

func (o *Order) transition(to Status) error {
	for _, allowed := range allowedTransitions[o.status] {
		if allowed == to {
			o.status = to
			return nil
		}
	}
	return ErrInvalidTransition
}

func (o *Order) BeginStockDeduction() error { return o.transition(StatusStockPending) }

func (o *Order) BeginCouponUsage() error { return o.transition(StatusCouponPending) }

func (o *Order) BeginBalanceDeduction() error { return o.transition(StatusBalancePending) }

func (o *Order) BeginCompensation() error { return o.transition(StatusCompensating) }

// AddItem records a successfully deducted item and accumulates the total.
func (o *Order) AddItem(item Item) {
	o.items = append(o.items, item)
	o.totalAmountCents += item.TotalPriceCents
	o.discountedAmountCents = o.totalAmountCents - o.discountAmountCents
}

// ApplyDiscount sets the coupon discount. The charge never goes below zero.
func (o *Order) ApplyDiscount(discountAmountCents int64) {
	o.discountAmountCents = discountAmountCents
	discounted := o.totalAmountCents - discountAmountCents
	if discounted < 0 {
		discounted = 0
	}
	o.discountedAmountCents = discounted
}

func (o *Order) Commit() error {
	return o.transition(StatusCommitted)
}

// Fail moves the order to its terminal failure state with the originating
// reason. Failing an already failed order keeps the first reason.
func (o *Order) Fail(reason string) {
	if o.status == StatusFailed || o.status == StatusCommitted {
		return
	}
	o.status = StatusFailed
	o.failureReason = reason
}

func (o *Order) ID() uuid.UUID { return o.id }

func (o *Order) UserID() uuid.UUID { return o.userID }

func (o *Order) UserCouponID() *uuid.UUID { return o.userCouponID }

func (o *Order) Items() []Item { return o.items }

func (o *Order) TotalAmountCents() int64 { return o.totalAmountCents }

func (o *Order) DiscountAmountCents() int64 { return o.discountAmountCents }

func (o *Order) DiscountedAmountCents() int64 { return o.discountedAmountCents }

func (o *Order) Status() Status { return o.status }

func (o *Order) OrderedAt() time.Time { return o.orderedAt }

func (o *Order) FailureReason() string { return o.failureReason }
