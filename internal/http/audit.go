package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	auditrepo "github.com/mvasilenko/spreadhub/internal/database/audit"
)

// AuditController serves the recorded lifecycle events of import runs.
type AuditController struct {
	repo *auditrepo.Repository
}

func NewAuditController(repo *auditrepo.Repository) *AuditController {
	return &AuditController{repo: repo}
}

// List handles GET /api/audit with limit/offset pagination.
func (c *AuditController) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

	events, total, err := c.repo.GetEvents(limit, offset)
	if err != nil {
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"events": events,
	})
}

// ByFileKey handles GET /api/audit/:fileKey, returning one run's lifecycle.
func (c *AuditController) ByFileKey(ctx *gin.Context) {
	events, err := c.repo.GetEventsByFileKey(ctx.Param("fileKey"))
	if err != nil {
		respondInternalError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"events": events})
}
