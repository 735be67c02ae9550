package di

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/config"
	"github.com/vizdeck/vizdeck-go/internal/observability"
)

// ObservabilityModule provides metrics dependencies
var ObservabilityModule = fx.Module("observability",
	fx.Provide(provideMetricsProvider),
)

func provideMetricsProvider(lc fx.Lifecycle, cfg *config.MetricsConfig, logger *zap.Logger) (*observability.MetricsProvider, error) {
	mp, err := observability.NewMetricsProvider(&observability.MetricsConfig{
		Enabled:        cfg.Enabled,
		ServiceName:    cfg.ServiceName,
		PrometheusPath: cfg.PrometheusPath,
	}, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return mp.Shutdown(ctx)
		},
	})

	return mp, nil
}
