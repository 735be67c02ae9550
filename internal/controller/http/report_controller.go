package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/domain/entity"
	"github.com/vizdeck/vizdeck-go/internal/domain/service"
	"github.com/vizdeck/vizdeck-go/internal/toolcore"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// ReportController handles report schedule endpoints
type ReportController struct {
	reports service.ReportService
	dao     *dao.ReportDAO
	list    *toolcore.ListCore[entity.ReportSchedule]
}

// NewReportController creates a new ReportController instance
func NewReportController(reports service.ReportService, reportDAO *dao.ReportDAO) *ReportController {
	return &ReportController{
		reports: reports,
		dao:     reportDAO,
		list: toolcore.NewListCore[entity.ReportSchedule](
			reportDAO, serializeReport,
			[]string{"name", "description"}, ""),
	}
}

// RegisterRoutes registers the report routes
func (c *ReportController) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("", c.List)
		reports.GET("/_info", c.Info)
		reports.GET("/:id", c.Get)
		reports.POST("", c.Create)
		reports.PUT("/:id", c.Update)
		reports.DELETE("", c.Delete)
	}
}

// List retrieves report schedules with filtering and pagination
func (c *ReportController) List(ctx *gin.Context) {
	resp, err := c.list.Run(ctx.Request.Context(), listRequestFromQuery(ctx))
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// Info serves the filterable-columns schema for report schedules
func (c *ReportController) Info(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, columnOperatorInfo(c.dao.FilterableColumnsAndOperators()))
}

// Get retrieves one report schedule by id
func (c *ReportController) Get(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		renderError(ctx, errors.ErrBadRequest.WithMessage("id must be an integer"))
		return
	}
	report, err := c.reports.Get(ctx.Request.Context(), id)
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": serializeReport(report)})
}

type reportPayload struct {
	Type           entity.ReportScheduleType   `json:"type" binding:"required"`
	Name           string                      `json:"name" binding:"required"`
	Description    string                      `json:"description"`
	Active         *bool                       `json:"active"`
	Crontab        string                      `json:"crontab"`
	CreationMethod entity.ReportCreationMethod `json:"creation_method"`
	Timezone       string                      `json:"timezone"`
	ChartID        *int                        `json:"chart_id"`
	DashboardID    *int                        `json:"dashboard_id"`
	DatabaseID     *int                        `json:"database_id"`
	SQL            string                      `json:"sql"`
	ExtraJSON      string                      `json:"extra_json"`
	Recipients     []dao.RecipientInput        `json:"recipients"`
}

func (p *reportPayload) toEntity() *entity.ReportSchedule {
	report := &entity.ReportSchedule{
		Type:           p.Type,
		Name:           p.Name,
		Description:    p.Description,
		Active:         true,
		Crontab:        p.Crontab,
		CreationMethod: p.CreationMethod,
		Timezone:       p.Timezone,
		ChartID:        p.ChartID,
		DashboardID:    p.DashboardID,
		DatabaseID:     p.DatabaseID,
		SQL:            p.SQL,
		ExtraJSON:      p.ExtraJSON,
	}
	if p.Active != nil {
		report.Active = *p.Active
	}
	if report.CreationMethod == "" {
		report.CreationMethod = entity.CreationMethodAlertsReport
	}
	return report
}

// Create validates and persists a new report schedule
func (c *ReportController) Create(ctx *gin.Context) {
	var payload reportPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		renderError(ctx, errors.ErrBadRequest.WithMessage(err.Error()))
		return
	}
	report := payload.toEntity()
	if err := c.reports.Create(ctx.Request.Context(), report, payload.Recipients); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"result": serializeReport(report)})
}

// Update validates and persists schedule changes
func (c *ReportController) Update(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		renderError(ctx, errors.ErrBadRequest.WithMessage("id must be an integer"))
		return
	}
	existing, err := c.reports.Get(ctx.Request.Context(), id)
	if err != nil {
		renderError(ctx, err)
		return
	}

	var payload reportPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		renderError(ctx, errors.ErrBadRequest.WithMessage(err.Error()))
		return
	}
	report := payload.toEntity()
	report.ID = existing.ID
	report.CreatedByID = existing.CreatedByID
	if err := c.reports.Update(ctx.Request.Context(), report, payload.Recipients); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"result": serializeReport(report)})
}

// Delete removes report schedules by id list
func (c *ReportController) Delete(ctx *gin.Context) {
	ids, ok := idsFromBody(ctx)
	if !ok {
		return
	}
	if err := c.reports.Delete(ctx.Request.Context(), ids); err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func serializeReport(report *entity.ReportSchedule) map[string]any {
	out := map[string]any{
		"id":              report.ID,
		"type":            report.Type,
		"name":            report.Name,
		"active":          report.Active,
		"crontab":         report.Crontab,
		"creation_method": report.CreationMethod,
		"timezone":        report.Timezone,
		"last_state":      report.LastState,
		"changed_on":      report.ChangedOn,
		"created_on":      report.CreatedOn,
	}
	if report.Description != "" {
		out["description"] = report.Description
	}
	if report.ChartID != nil {
		out["chart_id"] = *report.ChartID
	}
	if report.DashboardID != nil {
		out["dashboard_id"] = *report.DashboardID
	}
	if report.DatabaseID != nil {
		out["database_id"] = *report.DatabaseID
	}
	return out
}
