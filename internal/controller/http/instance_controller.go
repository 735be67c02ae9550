package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vizdeck/vizdeck-go/internal/toolcore"
)

// InstanceController serves the whole-instance summary
type InstanceController struct {
	core *toolcore.InstanceInfoCore
}

// NewInstanceController creates a new InstanceController instance
func NewInstanceController(core *toolcore.InstanceInfoCore) *InstanceController {
	return &InstanceController{core: core}
}

// RegisterRoutes registers the instance routes
func (c *InstanceController) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/instance/info", c.Info)
}

// Info assembles per-entity counts, time-window counts and custom metrics
func (c *InstanceController) Info(ctx *gin.Context) {
	info, err := c.core.Run(ctx.Request.Context())
	if err != nil {
		renderError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, info)
}
