package bootstrap

import (
	"ordersaga/internal/pkg/config"

	"go.uber.org/fx"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.SagaConfig { return cfg.Saga },
		func(cfg config.Config) config.AdmissionConfig { return cfg.Admission },
	),
)
