package request

import "github.com/google/uuid"

type IssueCouponRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
}
