package audit

import (
	"encoding/json"
	"log"

	"github.com/mvasilenko/spreadhub/internal/database/audit"
	"github.com/mvasilenko/spreadhub/internal/entities"
	"github.com/mvasilenko/spreadhub/internal/importer"
)

// Service provides high-level audit logging for import runs and maintenance
// actions.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogImportStarted records that an import run began.
func (s *Service) LogImportStarted(fileKey, filename string) {
	s.LogAsync(&entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		FileKey:     fileKey,
		Description: "Import started: " + filename,
		Status:      entities.AuditStatusStarted,
	})
}

// LogImportFinished records the outcome of an import run. On success the
// summary totals are attached as metadata.
func (s *Service) LogImportFinished(fileKey string, summary *importer.Summary, err error) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventImport,
		FileKey:   fileKey,
		Status:    entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = "Import failed"
		event.ErrorMsg = truncate(err.Error(), 500)
	} else if summary != nil {
		event.Revision = summary.Revision
		event.Description = "Import completed"
		metadata := map[string]any{
			"total_records":      summary.TotalRecords,
			"total_week_columns": summary.TotalWeekColumns,
		}
		if mdBytes, e := json.Marshal(metadata); e == nil {
			event.Metadata = string(mdBytes)
		}
	}

	s.LogAsync(event)
}

// LogRetention records a retention purge.
func (s *Service) LogRetention(deleted int64, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventRetention,
		Description: "Revision retention purge",
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	} else {
		metadata := map[string]any{"rows_deleted": deleted}
		if mdBytes, e := json.Marshal(metadata); e == nil {
			event.Metadata = string(mdBytes)
		}
	}
	s.LogAsync(event)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
