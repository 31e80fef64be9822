package components

import (
	"ordersaga/internal/handler"
	"ordersaga/internal/handler/api"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewCouponHandler,
	),
	fx.Invoke(handler.NewRouter),
)
