package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mvasilenko/spreadhub/internal/audit"
	"github.com/mvasilenko/spreadhub/internal/importer"
)

// ImportFileTask imports one spooled upload in the background. The spool file
// is removed once the run finishes, whatever the outcome.
type ImportFileTask struct {
	FileKey  string `json:"file_key"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

// Config returns the queue configuration for background imports.
func (t ImportFileTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "import_file",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ImportFileProcessor creates a processor function for ImportFileTask.
func ImportFileProcessor(imp *importer.Importer, auditService *audit.Service) backlite.QueueProcessor[ImportFileTask] {
	return func(ctx context.Context, task ImportFileTask) error {
		defer func() {
			if err := os.Remove(task.Path); err != nil {
				log.Printf("[TASK] Failed to remove spool file %s: %v", task.Path, err)
			}
		}()

		summary, err := imp.Run(ctx, task.FileKey, importer.FileSource{Path: task.Path})
		if auditService != nil {
			auditService.LogImportFinished(task.FileKey, summary, err)
		}
		if err != nil {
			return fmt.Errorf("import %s: %w", task.FileKey, err)
		}

		log.Printf("[TASK] Imported %s: %d records, %d weekly columns, revision %s",
			task.Filename, summary.TotalRecords, summary.TotalWeekColumns, summary.Revision)
		return nil
	}
}

// NewImportFileQueue creates a backlite queue for background imports.
func NewImportFileQueue(imp *importer.Importer, auditService *audit.Service) backlite.Queue {
	return backlite.NewQueue(ImportFileProcessor(imp, auditService))
}
