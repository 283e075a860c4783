package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mvasilenko/spreadhub/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))
	return db
}

func TestLogEvent(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	t.Run("stamps created_at when unset", func(t *testing.T) {
		event := &entities.AuditEvent{
			EventType: entities.AuditEventImport,
			FileKey:   "file-1",
			Status:    entities.AuditStatusStarted,
		}
		require.NoError(t, repo.LogEvent(event))
		assert.NotZero(t, event.ID)
		assert.False(t, event.CreatedAt.IsZero())
	})

	t.Run("keeps an explicit created_at", func(t *testing.T) {
		at := time.Date(2025, 7, 5, 10, 0, 0, 0, time.UTC)
		event := &entities.AuditEvent{
			EventType: entities.AuditEventImport,
			FileKey:   "file-2",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: at,
		}
		require.NoError(t, repo.LogEvent(event))
		assert.True(t, event.CreatedAt.Equal(at))
	})
}

func TestGetEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			EventType: entities.AuditEventImport,
			FileKey:   "file-1",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	t.Run("most recent first with pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents(2, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		require.Len(t, events, 2)
		assert.True(t, events[0].CreatedAt.After(events[1].CreatedAt))
	})

	t.Run("offset moves the window", func(t *testing.T) {
		events, _, err := repo.GetEvents(2, 4)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, events[0].CreatedAt.Equal(base))
	})

	t.Run("non-positive limit falls back to default", func(t *testing.T) {
		events, _, err := repo.GetEvents(0, 0)
		require.NoError(t, err)
		assert.Len(t, events, 5)
	})
}

func TestGetEventsByFileKey(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		EventType: entities.AuditEventImport, FileKey: "file-1",
		Status: entities.AuditStatusSuccess, CreatedAt: base.Add(time.Hour),
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		EventType: entities.AuditEventImport, FileKey: "file-1",
		Status: entities.AuditStatusStarted, CreatedAt: base,
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		EventType: entities.AuditEventImport, FileKey: "file-2",
		Status: entities.AuditStatusStarted, CreatedAt: base,
	}))

	events, err := repo.GetEventsByFileKey("file-1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, entities.AuditStatusStarted, events[0].Status, "lifecycle order, oldest first")
	assert.Equal(t, entities.AuditStatusSuccess, events[1].Status)
}

func TestDeleteOldEvents(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	cutoff := time.Date(2025, 7, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		EventType: entities.AuditEventImport, FileKey: "old",
		Status: entities.AuditStatusSuccess, CreatedAt: cutoff.Add(-time.Hour),
	}))
	require.NoError(t, repo.LogEvent(&entities.AuditEvent{
		EventType: entities.AuditEventImport, FileKey: "new",
		Status: entities.AuditStatusSuccess, CreatedAt: cutoff.Add(time.Hour),
	}))

	deleted, err := repo.DeleteOldEvents(cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, total, err := repo.GetEvents(10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].FileKey)
}
