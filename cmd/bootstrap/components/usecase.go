package components

import (
	"ordersaga/internal/infra/gateway"
	"ordersaga/internal/pkg/clock"
	"ordersaga/internal/usecase/commands"
	"ordersaga/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseGatewaysModule,
	usecaseCommandsModule,
	usecaseQueriesModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseGatewaysModule = fx.Module("usecase/gateways",
	fx.Provide(
		gateway.NewStockGateway,
		gateway.NewBalanceGateway,
		gateway.NewCouponGateway,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewOrderUseCase,
		commands.NewCouponUseCase,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCouponQueries,
	),
)
