package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/config"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
)

// DatabaseModule provides database dependencies based on config
var DatabaseModule = fx.Module("database",
	fx.Provide(
		provideDatabase,
		provideRedis,
	),
	fx.Invoke(runMigrations),
)

func provideDatabase(lc fx.Lifecycle, cfg *config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case string(config.DriverMySQL):
		dialector = mysql.Open(cfg.DSN())
	case string(config.DriverPostgres):
		dialector = postgres.Open(cfg.DSN())
	case string(config.DriverSQLite):
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logger.Info("Connecting to database",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
	)

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing database connection")
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideRedis(lc fx.Lifecycle, cfg *config.RedisConfig, logger *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis not reachable at startup", zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return client
}

func runMigrations(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("Running database migrations")
	return db.AutoMigrate(
		&entity.User{},
		&entity.Database{},
		&entity.Dataset{},
		&entity.Slice{},
		&entity.Dashboard{},
		&entity.EmbeddedDashboard{},
		&entity.ReportSchedule{},
		&entity.ReportRecipient{},
		&entity.ReportExecutionLog{},
		&entity.Log{},
		&entity.FavStar{},
		&entity.Tag{},
		&entity.TaggedObject{},
		&entity.SavedQuery{},
	)
}
