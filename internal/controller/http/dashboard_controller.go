package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/internal/domain/service"
	"github.com/vizdeck/vizdeck-go/internal/toolcore"
)

// DashboardController handles dashboard endpoints
type DashboardController struct {
	dashboards service.DashboardService
	dao        *dao.DashboardDAO
	list       *toolcore.ListCore[entity.Dashboard]
	getInfo    *toolcore.GetInfoCore[entity.Dashboard]
}

// NewDashboardController creates a new DashboardController instance
func NewDashboardController(dashboards service.DashboardService, dashboardDAO *dao.DashboardDAO) *DashboardController {
	return &DashboardController{
		dashboards: dashboards,
		dao:        dashboardDAO,
		list: toolcore.NewListCore[entity.Dashboard](
			dashboardDAO, serializeDashboard,
			[]string{"dashboard_title", "slug", "description"}, ""),
		getInfo: toolcore.NewGetInfoCore[entity.Dashboard](
			dashboardDAO, serializeDashboard, "Dashboard", true, nil),
	}
}

// RegisterRoutes registers the dashboard routes
func (c *DashboardController) RegisterRoutes(router *gin.RouterGroup) {
	dashboards := router.Group("/dashboards")
	{
		dashboards.GET("", c.List)
		dashboards.GET("/_info", c.Info)
		dashboards.GET("/:ref", c.Get)
		dashboards.GET("/:ref/charts", c.GetCharts)
		dashboards.GET("/:ref/datasets", c.GetDatasets)
		dashboards.GET("/:ref/tabs", c.GetTabs)
		dashboards.PUT("/:ref", c.Update)
		dashboards.POST("/:ref/copy", c.Copy)
		dashboards.POST("/:ref/embedded", c.SetEmbedded)
		dashboards.DELETE("", c.Delete)
		dashboards.POST("/:ref/favorites", c.AddFavorite)
		dashboards.DELETE("/:ref/favorites", c.RemoveFavorite)
		dashboards.GET("/favorite_status", c.FavoriteStatus)
	}
}

// List retrieves dashboards with filtering and pagination
func (c *DashboardController) List(ctx *gin.Context) {
	resp, err := c.list.Run(ctx.Request.Context(), listRequestFromQuery(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Info serves the filterable-columns schema for dashboards
func (c *DashboardController) Info(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, columnOperatorInfo(c.dao.FilterableColumnsAndOperators()))
}

// Get resolves an id, uuid or slug to one dashboard
func (c *DashboardController) Get(ctx *gin.Context) {
	dash, err := c.dashboards.Get(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": serializeDashboard(dash)})
}

// GetCharts lists the charts placed on a dashboard
func (c *DashboardController) GetCharts(ctx *gin.Context) {
	charts, err := c.dashboards.GetCharts(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	rows := make([]map[string]any, len(charts))
	for i, chart := range charts {
		rows[i] = serializeChart(chart)
	}
	ctx.JSON(http.StatusOK, gin.H{"result": rows})
}

// GetDatasets lists the datasets backing a dashboard's charts
func (c *DashboardController) GetDatasets(ctx *gin.Context) {
	datasets, err := c.dashboards.GetDatasets(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": datasets})
}

// GetTabs lists the TAB nodes of a dashboard's layout
func (c *DashboardController) GetTabs(ctx *gin.Context) {
	tabs, err := c.dashboards.GetTabs(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": tabs})
}

// Update persists layout and metadata changes
func (c *DashboardController) Update(ctx *gin.Context) {
	var data map[string]any
	if err := ctx.ShouldBindJSON(&data); err != nil {
		renderError(ctx, err)
		return
	}
	dash, err := c.dashboards.Update(ctx.Request.Context(), ctx.Param("ref"), data)
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": serializeDashboard(dash)})
}

// Copy duplicates a dashboard
func (c *DashboardController) Copy(ctx *gin.Context) {
	var body struct {
		DashboardTitle  string         `json:"dashboard_title"`
		CSS             string         `json:"css"`
		DuplicateSlices bool           `json:"duplicate_slices"`
		Positions       map[string]any `json:"positions"`
		Metadata        map[string]any `json:"json_metadata"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		renderError(ctx, err)
		return
	}
	copied, err := c.dashboards.Copy(ctx.Request.Context(), ctx.Param("ref"), dao.CopyDashboardParams{
		DashboardTitle:  body.DashboardTitle,
		CSS:             body.CSS,
		DuplicateSlices: body.DuplicateSlices,
		Positions:       body.Positions,
		Metadata:        body.Metadata,
	})
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"result": serializeDashboard(copied)})
}

// SetEmbedded configures embedding for a dashboard
func (c *DashboardController) SetEmbedded(ctx *gin.Context) {
	var body struct {
		AllowedDomains string `json:"allowed_domains"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		renderError(ctx, err)
		return
	}
	embedded, err := c.dashboards.SetEmbedded(ctx.Request.Context(), ctx.Param("ref"), body.AllowedDomains)
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": embedded})
}

// Delete removes dashboards by id list
func (c *DashboardController) Delete(ctx *gin.Context) {
	ids, ok := idsFromBody(ctx)
	if !ok {
		return
	}
	if err := c.dashboards.Delete(ctx.Request.Context(), ids); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// AddFavorite marks a dashboard as a favorite of the current actor
func (c *DashboardController) AddFavorite(ctx *gin.Context) {
	dash, err := c.dashboards.Get(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	if err := c.dashboards.AddFavorite(ctx.Request.Context(), dash.ID); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": "ok"})
}

// RemoveFavorite clears the actor's favorite marker
func (c *DashboardController) RemoveFavorite(ctx *gin.Context) {
	dash, err := c.dashboards.Get(ctx.Request.Context(), ctx.Param("ref"))
	if err != nil {
		renderError(ctx, err)
		return
	}
	if err := c.dashboards.RemoveFavorite(ctx.Request.Context(), dash.ID); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": "ok"})
}

// FavoriteStatus probes which of the given dashboards are favorited
func (c *DashboardController) FavoriteStatus(ctx *gin.Context) {
	ids, ok := idsFromQuery(ctx)
	if !ok {
		return
	}
	favorited, err := c.dashboards.FavoritedIDs(ctx.Request.Context(), ids)
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

func serializeDashboard(dash *entity.Dashboard) map[string]any {
	out := map[string]any{
		"id":              dash.ID,
		"uuid":            dash.UUID,
		"dashboard_title": dash.DashboardTitle,
		"published":       dash.Published,
		"certified":       dash.Certified,
		"css":             dash.CSS,
		"position_json":   dash.PositionJSON,
		"json_metadata":   dash.JSONMetadata,
		"changed_on":      dash.ChangedOn,
		"created_on":      dash.CreatedOn,
	}
	if dash.Slug != nil {
		out["slug"] = *dash.Slug
	}
	if len(dash.Owners) > 0 {
		owners := make([]map[string]any, len(dash.Owners))
		for i, owner := range dash.Owners {
			owners[i] = map[string]any{"id": owner.ID, "name": owner.FullName()}
		}
		out["owners"] = owners
	}
	return out
}
