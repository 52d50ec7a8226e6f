package tasks

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikestefanello/backlite"
)

// ResyncQueue is the durable repair queue for the snapshot. Failed exports
// enqueue a ResyncSnapshotTask and a backlite worker replays it against the
// Resyncer until the snapshot is rewritten or the attempts run out.
type ResyncQueue struct {
	client  *backlite.Client
	db      *sql.DB
	workers int

	mu      sync.Mutex
	started bool
}

// TasksDBPath returns the queue database path for a library database:
// same directory, "-tasks" suffix before the extension.
func TasksDBPath(mainDBPath string) string {
	base := filepath.Base(mainDBPath)
	ext := filepath.Ext(base)
	return filepath.Join(filepath.Dir(mainDBPath), strings.TrimSuffix(base, ext)+"-tasks"+ext)
}

// OpenResyncQueue opens the queue database next to mainDBPath and registers
// the resync processor. Pending repairs from a previous run are picked up
// once Start is called.
func OpenResyncQueue(mainDBPath string, cfg Config, resyncer Resyncer) (*ResyncQueue, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	db, err := sql.Open("sqlite3", TasksDBPath(mainDBPath)+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open tasks database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Workers + 2)

	client, err := backlite.NewClient(backlite.ClientConfig{
		DB:              db,
		NumWorkers:      cfg.Workers,
		ReleaseAfter:    cfg.ReleaseAfter,
		CleanupInterval: cfg.CleanupInterval,
		Logger:          taskLogger{},
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create backlite client: %w", err)
	}
	if err := client.Install(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to install backlite schema: %w", err)
	}
	client.Register(backlite.NewQueue(ResyncSnapshotProcessor(resyncer)))

	return &ResyncQueue{client: client, db: db, workers: cfg.Workers}, nil
}

// ScheduleResync enqueues a snapshot repair. Workers need not be running;
// the task waits in the queue database.
func (q *ResyncQueue) ScheduleResync(reason string) error {
	ids, err := q.client.Add(ResyncSnapshotTask{Reason: reason}).Save()
	if err != nil {
		return fmt.Errorf("failed to enqueue snapshot resync: %w", err)
	}
	if len(ids) > 0 {
		log.Printf("[TASK] Snapshot resync queued as %s", ids[0])
	}
	return nil
}

// Start launches the workers in the background. They exit when ctx is
// cancelled or Stop is called.
func (q *ResyncQueue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	log.Printf("[TASK] Resync queue started with %d workers", q.workers)
	q.client.Start(ctx)
}

// Stop waits for running repairs. It returns false if ctx expired first;
// interrupted tasks are released and retried on the next start.
func (q *ResyncQueue) Stop(ctx context.Context) bool {
	q.mu.Lock()
	started := q.started
	q.mu.Unlock()
	if !started {
		return true
	}

	ok := q.client.Stop(ctx)
	if ok {
		log.Println("[TASK] Resync queue stopped")
	} else {
		log.Println("[TASK] Resync queue stopped with timeout, pending repairs resume on next start")
	}
	return ok
}

// Close releases the queue database. Call after Stop.
func (q *ResyncQueue) Close() error {
	return q.db.Close()
}

type taskLogger struct{}

func (taskLogger) Info(message string, params ...any) {
	log.Printf("[TASK] "+message, params...)
}

func (taskLogger) Error(message string, params ...any) {
	log.Printf("[TASK ERROR] "+message, params...)
}
