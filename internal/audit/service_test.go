package audit

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	dbaudit "github.com/mvasilenko/spreadhub/internal/database/audit"
	"github.com/mvasilenko/spreadhub/internal/entities"
	"github.com/mvasilenko/spreadhub/internal/importer"
)

func setupService(t *testing.T) (*Service, *dbaudit.Repository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	repo := dbaudit.NewRepository(db)
	return NewService(repo), repo
}

// waitForEvents polls until the file key has the expected number of events.
// Audit writes are asynchronous, so tests must wait rather than assert
// immediately.
func waitForEvents(t *testing.T, repo *dbaudit.Repository, fileKey string, want int) []entities.AuditEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		events, err := repo.GetEventsByFileKey(fileKey)
		require.NoError(t, err)
		if len(events) >= want {
			return events
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected %d events for %s, got %d", want, fileKey, len(events))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestLogImportStarted(t *testing.T) {
	service, repo := setupService(t)

	service.LogImportStarted("file-1", "allocations.csv")

	events := waitForEvents(t, repo, "file-1", 1)
	assert.Equal(t, entities.AuditEventImport, events[0].EventType)
	assert.Equal(t, entities.AuditStatusStarted, events[0].Status)
	assert.Contains(t, events[0].Description, "allocations.csv")
}

func TestLogImportFinished(t *testing.T) {
	t.Run("success attaches summary metadata", func(t *testing.T) {
		service, repo := setupService(t)

		service.LogImportFinished("file-1", &importer.Summary{
			FileKey:          "file-1",
			Revision:         "20250705100000",
			TotalRecords:     1200,
			TotalWeekColumns: 52,
		}, nil)

		events := waitForEvents(t, repo, "file-1", 1)
		event := events[0]
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "20250705100000", event.Revision)
		assert.Contains(t, event.Metadata, `"total_records":1200`)
		assert.Contains(t, event.Metadata, `"total_week_columns":52`)
		assert.Empty(t, event.ErrorMsg)
	})

	t.Run("failure records the truncated error", func(t *testing.T) {
		service, repo := setupService(t)

		service.LogImportFinished("file-2", nil, errors.New(strings.Repeat("x", 600)))

		events := waitForEvents(t, repo, "file-2", 1)
		assert.Equal(t, entities.AuditStatusFailed, events[0].Status)
		assert.Len(t, events[0].ErrorMsg, 500)
		assert.Empty(t, events[0].Revision)
	})
}

func TestLogRetention(t *testing.T) {
	service, repo := setupService(t)

	service.LogRetention(42, nil)

	deadline := time.Now().Add(2 * time.Second)
	for {
		events, _, err := repo.GetEvents(10, 0)
		require.NoError(t, err)
		if len(events) == 1 {
			assert.Equal(t, entities.AuditEventRetention, events[0].EventType)
			assert.Equal(t, entities.AuditStatusSuccess, events[0].Status)
			assert.Contains(t, events[0].Metadata, `"rows_deleted":42`)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("retention event never arrived")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
