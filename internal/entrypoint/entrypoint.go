// Package entrypoint wires the record store, importer, task queue,
// scheduler and HTTP surface together and runs the server.
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

	"bookbatch/internal/audit"
	"bookbatch/internal/config"
	"bookbatch/internal/database"
	"bookbatch/internal/database/authors"
	"bookbatch/internal/database/books"
	"bookbatch/internal/database/categories"
	"bookbatch/internal/database/sessions"
	"bookbatch/internal/exporters"
	http_controllers "bookbatch/internal/http"
	"bookbatch/internal/importer"
	"bookbatch/internal/scheduler"
	"bookbatch/internal/tasks"
)

// BuildResourceConfig converts the string-typed import settings from the
// environment into the resource configuration the importer consumes.
func BuildResourceConfig(imp config.Import) (importer.ResourceConfig, error) {
	floor, err := time.Parse(imp.DateFormat, imp.EpochFloor)
	if err != nil {
		return importer.ResourceConfig{}, fmt.Errorf("invalid epoch floor %q: %w", imp.EpochFloor, err)
	}
	return importer.ResourceConfig{
		DateFormat:        imp.DateFormat,
		CategorySeparator: imp.CategorySeparator,
		DeleteColumn:      imp.DeleteColumn,
		DeleteSentinel:    imp.DeleteSentinel,
		EpochFloor:        floor,
		DeniedNames:       imp.DeniedNames,
	}, nil
}

// Run starts the server and blocks until a shutdown signal arrives.
func Run(cfg *config.Config, version string) {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	resourceCfg, err := BuildResourceConfig(cfg.Import)
	if err != nil {
		log.Fatalf("Invalid import configuration: %v", err)
	}

	bookRepo := books.NewRepository(db.DB)
	authorRepo := authors.NewRepository(db.DB)
	categoryRepo := categories.NewRepository(db.DB)
	sessionRepo := sessions.NewRepository(db.DB)
	auditor := audit.NewAuditor(cfg.Audit.Dir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var taskClient *tasks.Client
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer taskClient.Close()

		engineFactory := func(publisherID uint) *importer.Engine {
			var authorStore importer.AuthorStore = authorRepo
			if publisherID != 0 {
				authorStore = authorRepo.WithPublisher(publisherID)
			}
			resource := importer.NewBookResource(authorStore, categoryRepo, resourceCfg)
			return importer.NewEngine(resource, bookRepo)
		}
		taskClient.Register(tasks.NewImportBatchQueue(sessionRepo, engineFactory))
		go taskClient.Start(ctx)
	} else {
		log.Printf("Task queue disabled; async import endpoint will be unavailable")
	}

	var cleanupScheduler *scheduler.SessionCleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanupScheduler = scheduler.NewSessionCleanupScheduler(sessionRepo, cfg.Cleanup.Schedule, cfg.Cleanup.SessionRetention)
		if err := cleanupScheduler.Start(); err != nil {
			log.Fatalf("Failed to start session cleanup scheduler: %v", err)
		}
	}

	importController := http_controllers.NewBookImportController(
		bookRepo, authorRepo, categoryRepo, sessionRepo, auditor, taskClient, resourceCfg,
	)
	exportController := http_controllers.NewBookExportController(
		bookRepo, exporters.NewCSVExporter(resourceCfg.DateFormat, resourceCfg.CategorySeparator),
	)
	healthController := http_controllers.NewHealthController(db, version)

	router := gin.Default()
	router.GET("/health", healthController.Status)
	router.POST("/import/books", importController.Import)
	router.POST("/import/books/async", importController.ImportAsync)
	router.GET("/import/sessions", importController.ListSessions)
	router.GET("/import/sessions/:id", importController.GetSession)
	router.GET("/export/books.csv", exportController.Export)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	if cleanupScheduler != nil {
		cleanupScheduler.Stop()
	}
	if taskClient != nil {
		taskClient.Stop(shutdownCtx)
	}
	cancel()
	log.Println("Server exited")
}
