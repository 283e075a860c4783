package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mvasilenko/spreadhub/internal/database/spreads"
)

// RevisionController lists imported revisions, newest first.
type RevisionController struct {
	repo *spreads.Repository
}

func NewRevisionController(repo *spreads.Repository) *RevisionController {
	return &RevisionController{repo: repo}
}

// List handles GET /api/revisions.
func (c *RevisionController) List(ctx *gin.Context) {
	revisions, err := c.repo.DistinctRevisions()
	if err != nil {
		respondInternalError(ctx, err)
		return
	}
	if revisions == nil {
		revisions = []string{}
	}
	ctx.JSON(http.StatusOK, gin.H{"revisions": revisions})
}
