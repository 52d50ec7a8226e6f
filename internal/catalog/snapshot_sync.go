package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/exporters"
	"github.com/mrlokans/library/internal/store"
)

// RepairQueue schedules a background resync after a failed export.
type RepairQueue interface {
	ScheduleResync(reason string) error
}

// SyncStatus describes the most recent snapshot run.
type SyncStatus struct {
	LastRunID     string     `json:"last_run_id,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	LastSuccessAt *time.Time `json:"last_success_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
	BooksExported int        `json:"books_exported"`
	InSync        bool       `json:"in_sync"`
	Failures      int        `json:"consecutive_failures"`
}

// SnapshotSync exports the full book collection from the store. Runs are
// serialized so two concurrent mutations never interleave their writes, and
// each run reads the store after the caller's transaction has committed.
type SnapshotSync struct {
	store    store.Store
	exporter exporters.SnapshotExporter
	repair   RepairQueue

	runMu sync.Mutex

	mu     sync.RWMutex
	status SyncStatus

	now func() time.Time
}

var _ Synchronizer = (*SnapshotSync)(nil)

func NewSnapshotSync(s store.Store, exporter exporters.SnapshotExporter) *SnapshotSync {
	return &SnapshotSync{
		store:    s,
		exporter: exporter,
		now:      time.Now,
	}
}

// SetRepairQueue attaches a queue used to retry failed exports. Optional.
func (s *SnapshotSync) SetRepairQueue(queue RepairQueue) {
	s.repair = queue
}

// Sync exports the current state and, on failure, schedules a repair.
func (s *SnapshotSync) Sync(ctx context.Context) error {
	err := s.run(ctx)
	if err == nil {
		return nil
	}

	if s.repair != nil {
		if qerr := s.repair.ScheduleResync(err.Error()); qerr != nil {
			log.Printf("Snapshot sync: failed to schedule repair: %v", qerr)
		} else {
			log.Printf("Snapshot sync: repair scheduled")
			var exportErr *ExportError
			if errors.As(err, &exportErr) {
				exportErr.RepairScheduled = true
			}
		}
	}
	return err
}

// Resync exports the current state without scheduling a repair on failure.
// Background repair jobs call this and rely on their own retry policy.
func (s *SnapshotSync) Resync(ctx context.Context) error {
	return s.run(ctx)
}

func (s *SnapshotSync) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *SnapshotSync) run(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	runID := uuid.NewString()
	started := s.now()

	var books []entities.Book
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		var err error
		books, err = tx.GetAllBooks()
		return err
	})
	if err != nil {
		err = fmt.Errorf("failed to read books: %w", err)
	} else {
		var result exporters.ExportResult
		result, err = s.exporter.Export(books)
		if err == nil {
			s.recordSuccess(runID, started, result.BooksExported)
			return nil
		}
	}

	s.recordFailure(runID, started, err)
	log.Printf("Snapshot sync: run %s failed: %v", runID, err)
	return &ExportError{RunID: runID, Err: err}
}

func (s *SnapshotSync) recordSuccess(runID string, at time.Time, exported int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastRunID = runID
	s.status.LastAttemptAt = &at
	s.status.LastSuccessAt = &at
	s.status.LastError = ""
	s.status.BooksExported = exported
	s.status.InSync = true
	s.status.Failures = 0
}

func (s *SnapshotSync) recordFailure(runID string, at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastRunID = runID
	s.status.LastAttemptAt = &at
	s.status.LastError = err.Error()
	s.status.InSync = false
	s.status.Failures++
}
