// Package http exposes the REST surface: list, lookup and schema
// endpoints per entity family, favorites, and the instance summary.
package http

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vizdeck/vizdeck-go/internal/domain/dao"
	"github.com/vizdeck/vizdeck-go/internal/toolcore"
	"github.com/vizdeck/vizdeck-go/pkg/errors"
)

// renderError maps an application error to its HTTP shape.
func renderError(ctx *gin.Context, err error) {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		ctx.JSON(appErr.Status, gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"code":    errors.CodeInternalError,
		"message": "internal server error",
	})
}

// listRequestFromQuery reads the shared list parameters. Filters arrive
// as a JSON string in the q parameter style; select_columns is
// comma-separated.
func listRequestFromQuery(ctx *gin.Context) toolcore.ListRequest {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "0"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("page_size", "0"))

	var columns []string
	if raw := ctx.Query("select_columns"); raw != "" {
		columns = strings.Split(raw, ",")
	}

	return toolcore.ListRequest{
		Filters:        ctx.Query("filters"),
		Search:         ctx.Query("search"),
		SelectColumns:  columns,
		OrderColumn:    ctx.Query("order_column"),
		OrderDirection: ctx.Query("order_direction"),
		Page:           page,
		PageSize:       pageSize,
	}
}

// idsFromBody reads a JSON {"ids": [..]} payload.
func idsFromBody(ctx *gin.Context) ([]int, bool) {
	var body struct {
		IDs []int `json:"ids" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		renderError(ctx, errors.ErrBadRequest.WithMessage("ids list is required"))
		return nil, false
	}
	return body.IDs, true
}

// idsFromQuery reads a comma-separated ids query parameter.
func idsFromQuery(ctx *gin.Context) ([]int, bool) {
	raw := ctx.Query("ids")
	if raw == "" {
		renderError(ctx, errors.ErrBadRequest.WithMessage("ids parameter is required"))
		return nil, false
	}
	parts := strings.Split(raw, ",")
	ids := make([]int, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			renderError(ctx, errors.ErrBadRequest.WithMessage("ids must be integers"))
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, true
}

// columnOperatorInfo renders the introspection map with stable operator
// ordering per column.
func columnOperatorInfo(columns map[string][]dao.ColumnOperator) gin.H {
	out := gin.H{}
	for name, ops := range columns {
		rendered := make([]string, len(ops))
		for i, op := range ops {
			rendered[i] = string(op)
		}
		out[name] = rendered
	}
	return gin.H{"filters": out}
}
