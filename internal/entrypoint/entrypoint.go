package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	auditRepo "github.com/mrlokans/library/internal/database/audit"
	http_controllers "github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/store"
	"github.com/mrlokans/library/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds every wired component of a running server.
type App struct {
	Store       store.Store
	Catalog     *catalog.Service
	Sync        *catalog.SnapshotSync
	Audit       *audit.Service
	ResyncQueue *tasks.ResyncQueue
	Reconciler  *scheduler.ReconcileScheduler
	Router      *gin.Engine

	taskCancel context.CancelFunc
}

// Build wires the application from cfg. Background workers are not started;
// call Start for that.
func Build(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	entityStore, gormDB, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{Store: entityStore}

	exporter, err := NewSnapshotExporter(cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Sync = catalog.NewSnapshotSync(entityStore, exporter)
	app.Catalog = catalog.NewService(entityStore, app.Sync)
	log.Printf("Snapshot: %s (%s)", exporter.Path, exporter.Format)

	if cfg.Audit.Enabled {
		if gormDB != nil {
			app.Audit = audit.NewService(auditRepo.NewRepository(gormDB.DB))
			app.Catalog.SetRecorder(app.Audit)
		} else {
			log.Printf("WARNING: audit trail requires the gorm backend, disabled")
		}
	}

	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		}
		app.ResyncQueue, err = tasks.OpenResyncQueue(cfg.Database.Path, taskCfg, app.Sync)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize task queue: %w", err)
		}
		app.Sync.SetRepairQueue(app.ResyncQueue)
	}

	if cfg.Reconcile.Enabled {
		app.Reconciler = scheduler.NewReconcileScheduler(app.Catalog, cfg.Reconcile.Schedule)
	}

	routerCfg := http_controllers.RouterConfig{
		Books:          app.Catalog,
		Checkouts:      app.Catalog,
		Users:          app.Catalog,
		Resyncer:       app.Catalog,
		SnapshotStatus: app.Sync,
		Store:          entityStore,
		Version:        version,
	}
	if app.Audit != nil {
		routerCfg.Audit = app.Audit
	}
	app.Router = http_controllers.NewRouter(routerCfg)

	return app, nil
}

// Start runs the startup reconcile and launches background workers.
func (app *App) Start(ctx context.Context, cfg *config.Config) error {
	if cfg.Snapshot.SyncOnStart {
		if err := app.Catalog.ResyncSnapshot(ctx); err != nil {
			log.Printf("WARNING: startup snapshot resync failed: %v", err)
			if app.ResyncQueue != nil {
				_ = app.ResyncQueue.ScheduleResync("startup resync failed")
			}
		}
	}

	if app.Audit != nil && cfg.Audit.RetentionDays > 0 {
		retention := time.Duration(cfg.Audit.RetentionDays) * 24 * time.Hour
		if deleted, err := app.Audit.DeleteOldEvents(retention); err != nil {
			log.Printf("WARNING: failed to prune audit events: %v", err)
		} else if deleted > 0 {
			log.Printf("Pruned %d audit events older than %d days", deleted, cfg.Audit.RetentionDays)
		}
	}

	if app.ResyncQueue != nil {
		var taskCtx context.Context
		taskCtx, app.taskCancel = context.WithCancel(context.Background())
		go app.ResyncQueue.Start(taskCtx)
	}

	if app.Reconciler != nil {
		if err := app.Reconciler.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops background workers, waiting at most until ctx expires.
func (app *App) Shutdown(ctx context.Context) {
	if app.Reconciler != nil {
		app.Reconciler.Stop()
	}
	if app.ResyncQueue != nil && app.taskCancel != nil {
		app.ResyncQueue.Stop(ctx)
		app.taskCancel()
		app.taskCancel = nil
	}
}

// Close releases the task queue and the entity store.
func (app *App) Close() {
	if app.ResyncQueue != nil {
		if err := app.ResyncQueue.Close(); err != nil {
			log.Printf("Error closing resync queue: %v", err)
		}
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so no repair runs against a closing store
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library v%s", version)

	ctx := context.Background()
	app, err := Build(ctx, cfg, version)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer app.Close()

	if err := app.Start(ctx, cfg); err != nil {
		app.Close()
		log.Fatalf("Failed to start background workers: %v", err)
	}

	Serve(app.Router, cfg, app.Shutdown)
}
