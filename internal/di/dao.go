package di

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/internal/observability"
)

// DAOModule provides the data access layer
var DAOModule = fx.Module("dao",
	fx.Provide(
		provideDashboardDAO,
		provideChartDAO,
		provideReportDAO,
		provideEmbeddedDashboardDAO,
		provideLogDAO,
		provideDatasetDAO,
		provideDatabaseDAO,
		provideUserDAO,
		provideTagDAO,
		provideSavedQueryDAO,
	),
)

func provideDashboardDAO(db *gorm.DB, log *zap.Logger, mp *observability.MetricsProvider) (*dao.DashboardDAO, error) {
	return dao.NewDashboardDAO(db, log,
		dao.WithOpRecorder[entity.Dashboard](mp.DAORecorder()))
}

func provideChartDAO(db *gorm.DB, log *zap.Logger, mp *observability.MetricsProvider) (*dao.ChartDAO, error) {
	return dao.NewChartDAO(db, log,
		dao.WithOpRecorder[entity.Slice](mp.DAORecorder()))
}

func provideReportDAO(db *gorm.DB, log *zap.Logger, mp *observability.MetricsProvider) (*dao.ReportDAO, error) {
	return dao.NewReportDAO(db, log,
		dao.WithOpRecorder[entity.ReportSchedule](mp.DAORecorder()))
}

func provideEmbeddedDashboardDAO(db *gorm.DB, log *zap.Logger) (*dao.EmbeddedDashboardDAO, error) {
	return dao.NewEmbeddedDashboardDAO(db, log)
}

func provideLogDAO(db *gorm.DB, log *zap.Logger) (*dao.LogDAO, error) {
	return dao.NewLogDAO(db, log)
}

func provideDatasetDAO(db *gorm.DB, log *zap.Logger) (*dao.DatasetDAO, error) {
	return dao.NewDatasetDAO(db, log)
}

func provideDatabaseDAO(db *gorm.DB, log *zap.Logger) (*dao.DatabaseDAO, error) {
	return dao.NewDatabaseDAO(db, log)
}

func provideUserDAO(db *gorm.DB, log *zap.Logger) (*dao.UserDAO, error) {
	return dao.NewUserDAO(db, log)
}

func provideTagDAO(db *gorm.DB, log *zap.Logger) (*dao.TagDAO, error) {
	return dao.NewTagDAO(db, log)
}

func provideSavedQueryDAO(db *gorm.DB, log *zap.Logger) (*dao.SavedQueryDAO, error) {
	return dao.NewSavedQueryDAO(db, log)
}
