package errs

import "errors"

// Domain-specific sentinel errors shared by the saga and admission layers
var (
	// Validation errors (nothing was mutated yet)
	ErrValidation   = errors.New("validation error")
	ErrUserNotFound = errors.New("user not found")

	// Resource availability errors
	ErrProductNotFound     = errors.New("product not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponUnavailable   = errors.New("coupon unavailable")
	ErrCouponExhausted     = errors.New("coupon exhausted")

	// Concurrency errors
	ErrConcurrencyTimeout = errors.New("concurrency timeout")
	ErrLockUnavailable    = errors.New("lock unavailable")
	ErrUnexpectedResponse = errors.New("unexpected response type")

	// Saga completion errors
	ErrCompensationFailed = errors.New("compensation failed")
	ErrOrderPersistence   = errors.New("order persistence failed")
)
