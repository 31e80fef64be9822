package components

import (
	"context"

	"ordersaga/internal/domain/order"
	"ordersaga/internal/eventbus"
	"ordersaga/internal/infra/eventhandler"
	"ordersaga/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		eventhandler.NewStockHandler,
		eventhandler.NewBalanceHandler,
		eventhandler.NewCouponHandler,
		worker.NewAdmissionWorker,
	),
	fx.Invoke(
		registerEventHandlers,
		startAdmissionWorker,
	),
)

// registerEventHandlers subscribes the owning subsystems to their request
// kinds and routes every response kind back into the bridge.
func registerEventHandlers(
	bridge *eventbus.Bridge,
	stock *eventhandler.StockHandler,
	balance *eventhandler.BalanceHandler,
	coupon *eventhandler.CouponHandler,
) {
	stock.Register()
	balance.Register()
	coupon.Register()

	bridge.RouteResponses(
		order.KindStockDeductionCompleted,
		order.KindStockRestorationCompleted,
		order.KindBalanceDeductionCompleted,
		order.KindCouponUsageCompleted,
		order.KindCouponRestorationCompleted,
	)
}

func startAdmissionWorker(lc fx.Lifecycle, w *worker.AdmissionWorker) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			w.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return w.Stop(ctx)
		},
	})
}
