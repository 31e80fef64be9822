package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrExhausted   = errors.New("coupon exhausted")
	ErrAlreadyUsed = errors.New("coupon already used")
	ErrNotUsed     = errors.New("coupon not used")
	ErrInvalid     = errors.New("invalid coupon")
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExhausted Status = "EXHAUSTED"
)

// Coupon is a limited-quantity issuance resource. Once issuedCount reaches
// maxCount the status flips to EXHAUSTED and never flips back.
type Coupon struct {
	id                  uuid.UUID
	name                string
	discountAmountCents int64
	issuedCount         int32
	maxCount            int32
	status              Status
}

func New(id uuid.UUID, name string, discountAmountCents int64, issuedCount, maxCount int32, status Status) (*Coupon, error) {
	if maxCount <= 0 {
		return nil, ErrInvalid
	}
	if issuedCount < 0 || issuedCount > maxCount {
		return nil, ErrInvalid
	}
	return &Coupon{
		id:                  id,
		name:                name,
		discountAmountCents: discountAmountCents,
		issuedCount:         issuedCount,
		maxCount:            maxCount,
		status:              status,
	}, nil
}

func (c *Coupon) CanIssue() bool {
	return c.status == StatusActive && c.issuedCount < c.maxCount
}

// RecordIssuance consumes one unit of the coupon. The caller must hold the
// issuance lock for this coupon; the entity itself is not safe for concurrent
// mutation.
func (c *Coupon) RecordIssuance() error {
	if !c.CanIssue() {
		return ErrExhausted
	}
	c.issuedCount++
	if c.issuedCount >= c.maxCount {
		c.status = StatusExhausted
	}
	return nil
}

func (c *Coupon) ID() uuid.UUID { return c.id }

func (c *Coupon) Name() string { return c.name }

func (c *Coupon) DiscountAmountCents() int64 { return c.discountAmountCents }

func (c *Coupon) IssuedCount() int32 { return c.issuedCount }

func (c *Coupon) MaxCount() int32 { return c.maxCount }

func (c *Coupon) Status() Status { return c.status }

// UserCoupon is one issued instance of a coupon held by a user.
type UserCoupon struct {
	id                  uuid.UUID
	userID              uuid.UUID
	couponID            uuid.UUID
	discountAmountCents int64
	issuedAt            time.Time
	usedAt              *time.Time
}

func NewUserCoupon(userID uuid.UUID, c *Coupon, issuedAt time.Time) *UserCoupon {
	return &UserCoupon{
		id:                  uuid.New(),
		userID:              userID,
		couponID:            c.ID(),
		discountAmountCents: c.DiscountAmountCents(),
		issuedAt:            issuedAt,
	}
}

func RestoreUserCoupon(id, userID, couponID uuid.UUID, discountAmountCents int64, issuedAt time.Time, usedAt *time.Time) *UserCoupon {
	return &UserCoupon{
		id:                  id,
		userID:              userID,
		couponID:            couponID,
		discountAmountCents: discountAmountCents,
		issuedAt:            issuedAt,
		usedAt:              usedAt,
	}
}

func (uc *UserCoupon) Use(now time.Time) error {
	if uc.usedAt != nil {
		return ErrAlreadyUsed
	}
	uc.usedAt = &now
	return nil
}

// RevertUsage undoes Use when a later saga step fails.
func (uc *UserCoupon) RevertUsage() error {
	if uc.usedAt == nil {
		return ErrNotUsed
	}
	uc.usedAt = nil
	return nil
}

func (uc *UserCoupon) ID() uuid.UUID { return uc.id }

func (uc *UserCoupon) UserID() uuid.UUID { return uc.userID }

func (uc *UserCoupon) CouponID() uuid.UUID { return uc.couponID }

func (uc *UserCoupon) DiscountAmountCents() int64 { return uc.discountAmountCents }

func (uc *UserCoupon) IssuedAt() time.Time { return uc.issuedAt }

func (uc *UserCoupon) UsedAt() *time.Time { return uc.usedAt }
