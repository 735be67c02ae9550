package di

import (
	"go.uber.org/fx"

	httpctrl "github.com/vizdeck/vizdeck-go/internal/controller/http"
	"github.com/vizdeck/vizdeck-go/internal/middleware"
)

// MiddlewareModule provides request middleware
var MiddlewareModule = fx.Module("middleware",
	fx.Provide(middleware.NewActorResolver),
)

// ControllerModule provides the HTTP controllers
var ControllerModule = fx.Module("controller",
	fx.Provide(
		httpctrl.NewDashboardController,
		httpctrl.NewChartController,
		httpctrl.NewReportController,
		httpctrl.NewInstanceController,
	),
)
