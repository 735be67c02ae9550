package di

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/service"
	"github.com/vizdeck/vizdeck-go/internal/toolcore"
)

// ServiceModule provides the domain services and tool cores
var ServiceModule = fx.Module("service",
	fx.Provide(
		service.NewChartService,
		service.NewDashboardService,
		service.NewReportService,
		provideInstanceInfoCore,
	),
)

func provideInstanceInfoCore(
	dashboards *dao.DashboardDAO,
	charts *dao.ChartDAO,
	reports *dao.ReportDAO,
	datasets *dao.DatasetDAO,
	databases *dao.DatabaseDAO,
	savedQueries *dao.SavedQueryDAO,
	log *zap.Logger,
) *toolcore.InstanceInfoCore {
	daos := map[string]toolcore.CountingDAO{
		"dashboards":    dashboards,
		"charts":        charts,
		"reports":       reports,
		"datasets":      datasets,
		"databases":     databases,
		"saved_queries": savedQueries,
	}
	windows := map[string]int{
		"last_7_days":  7,
		"last_30_days": 30,
	}
	calculators := map[string]toolcore.MetricCalculator{
		"charts_per_dashboard": chartsPerDashboard,
	}
	return toolcore.NewInstanceInfoCore(daos, calculators, windows, log)
}

// chartsPerDashboard derives the mean chart count per dashboard from the
// base counts. Returns nil with no dashboards so the metric is omitted.
func chartsPerDashboard(_ context.Context, baseCounts map[string]int64, _ map[string]map[string]int64, _ map[string]toolcore.CountingDAO) (any, error) {
	dashboards := baseCounts["dashboards"]
	if dashboards == 0 {
		return nil, nil
	}
	return float64(baseCounts["charts"]) / float64(dashboards), nil
}
