package di

import (
	"go.uber.org/fx"

	"github.com/vizdeck/vizdeck-go/internal/config"
)

// ConfigModule provides configuration dependencies
var ConfigModule = fx.Module("config",
	fx.Provide(
		config.Load,
		provideAppConfig,
		provideServerConfig,
		provideDatabaseConfig,
		provideRedisConfig,
		provideRetentionConfig,
		provideMetricsConfig,
	),
)

func provideAppConfig(cfg *config.Config) *config.AppConfig {
	return &cfg.App
}

func provideServerConfig(cfg *config.Config) *config.ServerConfig {
	return &cfg.Server
}

func provideDatabaseConfig(cfg *config.Config) *config.DatabaseConfig {
	return &cfg.Database
}

func provideRedisConfig(cfg *config.Config) *config.RedisConfig {
	return &cfg.Redis
}

func provideRetentionConfig(cfg *config.Config) config.RetentionConfig {
	return cfg.Retention
}

func provideMetricsConfig(cfg *config.Config) *config.MetricsConfig {
	return &cfg.Metrics
}
