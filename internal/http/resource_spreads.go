package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvasilenko/spreadhub/internal/database/spreads"
)

// ResourceSpreadController serves imported resource records with pagination
// and optional filters.
type ResourceSpreadController struct {
	repo *spreads.Repository
}

func NewResourceSpreadController(repo *spreads.Repository) *ResourceSpreadController {
	return &ResourceSpreadController{repo: repo}
}

// List handles GET /api/resource-spreads.
// Query params: projectId, revision ("latest" resolves to the newest batch),
// page, pageSize.
func (c *ResourceSpreadController) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)
	filter := spreads.Filter{
		ProjectID: ctx.Query("projectId"),
		Revision:  ctx.Query("revision"),
	}

	resources, total, err := c.repo.ListResources(filter, page, pageSize)
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, PaginatedResponse{
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
		Data:       resources,
	})
}
