package bootstrap

import (
	"ordersaga/internal/eventbus"

	"go.uber.org/fx"
)

var EventBusModule = fx.Module("eventbus",
	fx.Provide(
		eventbus.NewBus,
		eventbus.NewBridge,
	),
)
