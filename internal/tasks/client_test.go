package tasks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// The queue uses its own database next to the main one.
	tasksDBPath := filepath.Join(tmpDir, "test-tasks.db")
	_, err = os.Stat(tasksDBPath)
	assert.NoError(t, err, "tasks database should be created")

	err = client.Close()
	assert.NoError(t, err)
}

func TestClientStartStop(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()

	success := client.Stop(stopCtx)
	assert.True(t, success, "stop should succeed gracefully")
}

func TestImportTaskEnqueue(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	client, err := NewClient(dbPath, DefaultConfig())
	require.NoError(t, err)
	defer client.Close()

	task := ImportFileTask{
		FileKey:  "file-1",
		Path:     filepath.Join(tmpDir, "file-1.csv"),
		Filename: "allocations.csv",
	}
	_, err = client.Add(task).Save()
	assert.NoError(t, err)
}

func TestImportFileTaskConfig(t *testing.T) {
	cfg := ImportFileTask{}.Config()

	assert.Equal(t, "import_file", cfg.Name)
	assert.Equal(t, 1, cfg.MaxAttempts, "a failed import is not retried blindly")
	assert.Equal(t, 30*time.Minute, cfg.Timeout)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 1, cfg.Workers, "imports run one at a time by default")
	assert.Equal(t, 45*time.Minute, cfg.ReleaseAfter)
	assert.Greater(t, cfg.ReleaseAfter, cfg.TaskTimeout, "stuck tasks outlive the run timeout")
}
