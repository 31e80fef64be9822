package response

import (
	"time"

	"ordersaga/internal/usecase/commands"

	"github.com/google/uuid"
)

type OrderResponse struct {
	ID                    uuid.UUID           `json:"id"`
	UserID                uuid.UUID           `json:"userId"`
	Items                 []OrderItemResponse `json:"items"`
	TotalAmountCents      int64               `json:"totalAmountCents"`
	DiscountAmountCents   int64               `json:"discountAmountCents"`
	DiscountedAmountCents int64               `json:"discountedAmountCents"`
	Status                string              `json:"status"`
	OrderedAt             time.Time           `json:"orderedAt"`
}

type OrderItemResponse struct {
	ProductID       uuid.UUID `json:"productId"`
	ProductName     string    `json:"productName"`
	Quantity        int32     `json:"quantity"`
	UnitPriceCents  int64     `json:"unitPriceCents"`
	TotalPriceCents int64     `json:"totalPriceCents"`
}

func FromOrderView(view *commands.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, 0, len(view.Items))
	for _, item := range view.Items {
		items = append(items, OrderItemResponse{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			UnitPriceCents:  item.UnitPriceCents,
			TotalPriceCents: item.TotalPriceCents,
		})
	}
	return &OrderResponse{
		ID:                    view.ID,
		UserID:                view.UserID,
		Items:                 items,
		TotalAmountCents:      view.TotalAmountCents,
		DiscountAmountCents:   view.DiscountAmountCents,
		DiscountedAmountCents: view.DiscountedAmountCents,
		Status:                string(view.Status),
		OrderedAt:             view.OrderedAt,
	}
}
