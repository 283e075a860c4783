package http

import (
	"github.com/mvasilenko/spreadhub/internal/audit"
	"github.com/mvasilenko/spreadhub/internal/database"
	auditrepo "github.com/mvasilenko/spreadhub/internal/database/audit"
	"github.com/mvasilenko/spreadhub/internal/database/spreads"
	"github.com/mvasilenko/spreadhub/internal/events"
	"github.com/mvasilenko/spreadhub/internal/importer"
	"github.com/mvasilenko/spreadhub/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed to build
// the HTTP router.
type RouterConfig struct {
	Database     *database.Database
	SpreadRepo   *spreads.Repository
	AuditRepo    *auditrepo.Repository
	AuditService *audit.Service
	Importer     *importer.Importer
	Hub          *events.Hub
	TaskClient   *tasks.Client // nil disables async imports

	SpoolDir       string
	MaxUploadBytes int64
	Version        string
}
