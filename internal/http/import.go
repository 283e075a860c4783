package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mvasilenko/spreadhub/internal/audit"
	"github.com/mvasilenko/spreadhub/internal/importer"
	"github.com/mvasilenko/spreadhub/internal/tasks"
	"github.com/mvasilenko/spreadhub/internal/utils"
)

// ImportController accepts resource spread uploads and runs them through the
// import pipeline. Uploads are spooled to disk first: the pipeline scans its
// source twice, and multipart bodies are single-use streams.
type ImportController struct {
	importer       *importer.Importer
	auditService   *audit.Service
	taskClient     *tasks.Client
	spoolDir       string
	maxUploadBytes int64
}

// NewImportController creates the upload controller. taskClient may be nil,
// which disables async imports.
func NewImportController(imp *importer.Importer, auditService *audit.Service, taskClient *tasks.Client, spoolDir string, maxUploadBytes int64) *ImportController {
	return &ImportController{
		importer:       imp,
		auditService:   auditService,
		taskClient:     taskClient,
		spoolDir:       spoolDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// ImportResponse is returned for a synchronous import.
type ImportResponse struct {
	Message          string `json:"message"`
	FileKey          string `json:"fileKey"`
	Revision         string `json:"revision,omitempty"`
	TotalRecords     int    `json:"totalRecords"`
	TotalWeekColumns int    `json:"totalWeekColumns"`
}

// QueuedResponse is returned for an async import.
type QueuedResponse struct {
	Message string `json:"message"`
	FileKey string `json:"fileKey"`
}

// Upload handles POST /api/import/upload. The optional fileKey form field
// lets clients pick the progress group before uploading, so subscribers can
// join it first; otherwise one is generated. With async=true the import runs
// on the background queue and the call returns immediately.
func (c *ImportController) Upload(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		respondBadRequest(ctx, "No file uploaded")
		return
	}

	if c.maxUploadBytes > 0 && file.Size > c.maxUploadBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: fmt.Sprintf("File too large (max %d MB)", c.maxUploadBytes/(1024*1024)),
		})
		return
	}

	fileKey := utils.SanitizeFileKey(ctx.PostForm("fileKey"))
	if fileKey == "" {
		fileKey = uuid.New().String()
	}

	spoolPath, err := c.spool(ctx, file, fileKey)
	if err != nil {
		respondInternalError(ctx, fmt.Errorf("spool upload: %w", err))
		return
	}

	if c.auditService != nil {
		c.auditService.LogImportStarted(fileKey, file.Filename)
	}

	if ctx.Query("async") == "true" && c.taskClient != nil {
		task := tasks.ImportFileTask{FileKey: fileKey, Path: spoolPath, Filename: file.Filename}
		if _, err := c.taskClient.Add(task).Save(); err != nil {
			os.Remove(spoolPath)
			respondInternalError(ctx, fmt.Errorf("enqueue import: %w", err))
			return
		}
		ctx.JSON(http.StatusAccepted, QueuedResponse{
			Message: "Import queued",
			FileKey: fileKey,
		})
		return
	}

	defer os.Remove(spoolPath)

	summary, err := c.importer.Run(ctx.Request.Context(), fileKey, importer.FileSource{Path: spoolPath})
	if c.auditService != nil {
		c.auditService.LogImportFinished(fileKey, summary, err)
	}
	if err != nil {
		if errors.Is(err, importer.ErrMissingHeader) {
			respondBadRequest(ctx, "File has no header row")
			return
		}
		respondInternalError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, ImportResponse{
		Message:          "Import completed successfully",
		FileKey:          summary.FileKey,
		Revision:         summary.Revision,
		TotalRecords:     summary.TotalRecords,
		TotalWeekColumns: summary.TotalWeekColumns,
	})
}

// spool writes the upload under the spool directory keyed by fileKey.
func (c *ImportController) spool(ctx *gin.Context, file *multipart.FileHeader, fileKey string) (string, error) {
	if err := os.MkdirAll(c.spoolDir, 0o755); err != nil {
		return "", err
	}
	spoolPath := filepath.Join(c.spoolDir, fileKey+".csv")
	if err := ctx.SaveUploadedFile(file, spoolPath); err != nil {
		return "", err
	}
	return spoolPath, nil
}
