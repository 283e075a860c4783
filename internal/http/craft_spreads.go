package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvasilenko/spreadhub/internal/database/spreads"
)

// CraftSpreadController serves the weekly value records pivoted into a dense
// grid: one row per (project, activity) group, one column per week label,
// absent cells filled with zero for display.
type CraftSpreadController struct {
	repo *spreads.Repository
}

func NewCraftSpreadController(repo *spreads.Repository) *CraftSpreadController {
	return &CraftSpreadController{repo: repo}
}

// CraftSpreadResponse is one page of the pivot grid.
type CraftSpreadResponse struct {
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	Columns    []string                `json:"columns"`
	Data       []spreads.CraftPivotRow `json:"data"`
}

// List handles GET /api/craft-spreads.
// Query params: projectId, revision, page, pageSize.
func (c *CraftSpreadController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := spreads.Filter{
		ProjectID: ctx.Query("projectId"),
		Revision:  ctx.Query("revision"),
	}

	pivot, err := c.repo.CraftPivot(filter, page, pageSize)
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, CraftSpreadResponse{
		TotalCount: pivot.TotalCount,
		Page:       page,
		PageSize:   pageSize,
		Columns:    pivot.Columns,
		Data:       pivot.Rows,
	})
}
