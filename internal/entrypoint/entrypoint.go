package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mvasilenko/spreadhub/internal/audit"
	"github.com/mvasilenko/spreadhub/internal/config"
	"github.com/mvasilenko/spreadhub/internal/database"
	auditrepo "github.com/mvasilenko/spreadhub/internal/database/audit"
	"github.com/mvasilenko/spreadhub/internal/database/spreads"
	"github.com/mvasilenko/spreadhub/internal/events"
	http_controllers "github.com/mvasilenko/spreadhub/internal/http"
	"github.com/mvasilenko/spreadhub/internal/importer"
	"github.com/mvasilenko/spreadhub/internal/scheduler"
	"github.com/mvasilenko/spreadhub/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt arrives, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background workers before the listener so queued imports finish
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires all components and serves the API.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting spreadhub v%s", version)

	if err := os.MkdirAll(cfg.Import.SpoolDir, 0o755); err != nil {
		log.Fatalf("Failed to create spool directory %s: %v", cfg.Import.SpoolDir, err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	spreadRepo := spreads.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)
	auditService := audit.NewService(auditRepo)

	hub := events.NewHub()
	notifier := events.NewImportNotifier(hub)
	imp := importer.New(spreadRepo, notifier, cfg.Import.BatchSize)

	// Background import queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize import queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewImportFileQueue(imp, auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Revision retention
	retention := scheduler.NewRetentionScheduler(spreadRepo, auditService, scheduler.RetentionConfig{
		Enabled:       cfg.Retention.Enabled,
		Schedule:      cfg.Retention.Schedule,
		KeepRevisions: cfg.Retention.KeepRevisions,
	})
	if err := retention.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start retention scheduler: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       db,
		SpreadRepo:     spreadRepo,
		AuditRepo:      auditRepo,
		AuditService:   auditService,
		Importer:       imp,
		Hub:            hub,
		TaskClient:     taskClient,
		SpoolDir:       cfg.Import.SpoolDir,
		MaxUploadBytes: cfg.Import.MaxUploadSizeMB * 1024 * 1024,
		Version:        version,
	}
	router := http_controllers.NewRouter(routerCfg)

	Serve(router, cfg, func(ctx context.Context) {
		retention.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
			if taskCtxCancel != nil {
				taskCtxCancel()
			}
		}
	})
}
