package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/internal/domain/service"
	"github.com/vizdeck/vizdeck-go/internal/toolcore"
)

// ChartController handles chart endpoints
type ChartController struct {
	charts  service.ChartService
	dao     *dao.ChartDAO
	list    *toolcore.ListCore[entity.Slice]
	getInfo *toolcore.GetInfoCore[entity.Slice]
}

// NewChartController creates a new ChartController instance
func NewChartController(charts service.ChartService, chartDAO *dao.ChartDAO) *ChartController {
	return &ChartController{
		charts: charts,
		dao:    chartDAO,
		list: toolcore.NewListCore[entity.Slice](
			chartDAO, serializeChart,
			[]string{"slice_name", "description", "viz_type"}, ""),
		getInfo: toolcore.NewGetInfoCore[entity.Slice](
			chartDAO, serializeChart, "Slice", false, nil),
	}
}

// RegisterRoutes registers the chart routes
func (c *ChartController) RegisterRoutes(router *gin.RouterGroup) {
	charts := router.Group("/charts")
	{
		charts.GET("", c.List)
		charts.GET("/_info", c.Info)
		charts.GET("/:ref", c.Get)
		charts.DELETE("", c.Delete)
		charts.POST("/:ref/favorites", c.AddFavorite)
		charts.DELETE("/:ref/favorites", c.RemoveFavorite)
		charts.GET("/favorite_status", c.FavoriteStatus)
	}
}

// List retrieves charts with filtering and pagination
func (c *ChartController) List(ctx *gin.Context) {
	resp, err := c.list.Run(ctx.Request.Context(), listRequestFromQuery(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Info serves the filterable-columns schema for charts
func (c *ChartController) Info(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, columnOperatorInfo(c.dao.FilterableColumnsAndOperators()))
}

// Get resolves an id or uuid to one chart
func (c *ChartController) Get(ctx *gin.Context) {
	result, notFound, err := c.getInfo.Run(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	if notFound != nil {
		ctx.JSON(http.StatusNotFound, notFound)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": result})
}

// Delete removes charts by id list
func (c *ChartController) Delete(ctx *gin.Context) {
	ids, ok := idsFromBody(ctx)
	if !ok {
		return
	}
	if err := c.charts.Delete(ctx.Request.Context(), ids); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// AddFavorite marks a chart as a favorite of the current actor
func (c *ChartController) AddFavorite(ctx *gin.Context) {
	chart, err := c.charts.Get(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	if err := c.charts.AddFavorite(ctx.Request.Context(), chart.ID); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": "ok"})
}

// RemoveFavorite clears the actor's favorite marker
func (c *ChartController) RemoveFavorite(ctx *gin.Context) {
	chart, err := c.charts.Get(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	if err := c.charts.RemoveFavorite(ctx.Request.Context(), chart.ID); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": "ok"})
}

// FavoriteStatus probes which of the given charts are favorited
func (c *ChartController) FavoriteStatus(ctx *gin.Context) {
	ids, ok := idsFromQuery(ctx)
	if !ok {
		return
	}
	favorited, err := c.charts.FavoritedIDs(ctx.Request.Context(), ids)
	if err != nil {
		renderError(ctx, err)
		return
	}
	set := make(map[int]bool, len(favorited))
	for _, id := range favorited {
		set[id] = true
	}
	result := make([]gin.H, len(ids))
	for i, id := range ids {
		result[i] = gin.H{"id": id, "value": set[id]}
	}
	ctx.JSON(http.StatusOK, gin.H{"result": result})
}

func serializeChart(chart *entity.Slice) map[string]any {
	out := map[string]any{
		"id":              chart.ID,
		"uuid":            chart.UUID,
		"slice_name":      chart.SliceName,
		"viz_type":        chart.VizType,
		"datasource_id":   chart.DatasourceID,
		"datasource_type": chart.DatasourceType,
		"certified":       chart.Certified,
		"changed_on":      chart.ChangedOn,
		"created_on":      chart.CreatedOn,
	}
	if chart.Description != "" {
		out["description"] = chart.Description
	}
	if chart.CacheTimeout != nil {
		out["cache_timeout"] = *chart.CacheTimeout
	}
	return out
}
