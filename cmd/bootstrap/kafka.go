package bootstrap

import (
	"context"
	"log/slog"

	"ordersaga/internal/infra/kafkabus"
	"ordersaga/internal/pkg/config"
	"ordersaga/internal/usecase/commands"

	"go.uber.org/fx"
)

var KafkaModule = fx.Module("kafka",
	fx.Provide(
		fx.Annotate(
			NewKafkaPublisher,
			fx.As(new(commands.EventPublisher)),
		),
	),
)

func NewKafkaPublisher(lc fx.Lifecycle, cfg config.Config, logger *slog.Logger) *kafkabus.Publisher {
	publisher := kafkabus.NewPublisher(cfg.Kafka, logger)

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return publisher.Close()
		},
	})

	return publisher
}
