package request

import (
	"ordersaga/internal/usecase/commands"

	"github.com/google/uuid"
)

type CreateOrderRequest struct {
	UserID       uuid.UUID          `json:"userId" binding:"required"`
	UserCouponID *uuid.UUID         `json:"userCouponId,omitempty"`
	Items        []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,gt=0"`
}

func (r CreateOrderRequest) ToCommand() commands.CreateOrderCommand {
	items := make([]commands.OrderItemCommand, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, commands.OrderItemCommand{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}
	return commands.CreateOrderCommand{
		UserID:       r.UserID,
		UserCouponID: r.UserCouponID,
		Items:        items,
	}
}
