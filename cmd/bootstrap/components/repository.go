package components

import (
	"ordersaga/internal/infra/eventhandler"
	"ordersaga/internal/infra/redislock"
	"ordersaga/internal/infra/redisqueue"
	repo_impl "ordersaga/internal/infra/repository"
	"ordersaga/internal/usecase/commands"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewUserRepository,
			fx.As(new(commands.UserRepository)),
			fx.As(new(eventhandler.BalanceStore)),
		),
		fx.Annotate(
			repo_impl.NewProductRepository,
			fx.As(new(eventhandler.ProductStore)),
		),
		fx.Annotate(
			repo_impl.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
		),
		fx.Annotate(
			repo_impl.NewCouponRepository,
			fx.As(new(commands.CouponRepository)),
			fx.As(new(eventhandler.UserCouponStore)),
		),
		// Queue and lock live in Redis so that every instance drains the
		// same waiting line.
		redisqueue.NewStore,
		redislock.NewService,
	),
)
