package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Import
		Tasks
		Retention
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Import struct {
		BatchSize       int    // rows per persist cycle
		MaxUploadSizeMB int64  // practical upper bound for one upload
		SpoolDir        string // where uploads land before the two-pass scan
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Retention struct {
		Enabled       bool
		Schedule      string // Cron format: "0 3 * * *" = daily at 03:00
		KeepRevisions int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8199)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("import_batch_size", 2000)
	v.SetDefault("import_max_upload_size_mb", 200)
	v.SetDefault("import_spool_dir", DefaultSpoolDir)

	// Background import queue
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("tasks_workers", 1)
	v.SetDefault("tasks_max_retries", 1)
	v.SetDefault("tasks_retry_delay", "1m")
	v.SetDefault("tasks_task_timeout", "30m")
	v.SetDefault("tasks_release_after", "45m")
	v.SetDefault("tasks_cleanup_interval", "1h")
	v.SetDefault("tasks_retention_duration", "24h")

	// Revision retention
	v.SetDefault("retention_enabled", false)
	v.SetDefault("retention_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("retention_keep_revisions", 10)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Import: Import{
			BatchSize:       v.GetInt("IMPORT_BATCH_SIZE"),
			MaxUploadSizeMB: v.GetInt64("IMPORT_MAX_UPLOAD_SIZE_MB"),
			SpoolDir:        v.GetString("IMPORT_SPOOL_DIR"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASKS_WORKERS"),
			MaxRetries:        v.GetInt("TASKS_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASKS_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASKS_TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASKS_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASKS_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASKS_RETENTION_DURATION"),
		},
		Retention: Retention{
			Enabled:       v.GetBool("RETENTION_ENABLED"),
			Schedule:      v.GetString("RETENTION_SCHEDULE"),
			KeepRevisions: v.GetInt("RETENTION_KEEP_REVISIONS"),
		},
	}
}
