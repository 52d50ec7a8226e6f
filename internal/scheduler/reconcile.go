package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultReconcileSchedule runs a reconcile at the top of every hour.
const DefaultReconcileSchedule = "0 * * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// SnapshotResyncer forces a snapshot export from the current store state.
type SnapshotResyncer interface {
	ResyncSnapshot(ctx context.Context) error
}

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// NextRunTime returns the next activation of schedule after from.
func NextRunTime(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}

// ReconcileScheduler periodically rewrites the snapshot so that it converges
// with the entity store even if every repair attempt was exhausted.
type ReconcileScheduler struct {
	resyncer SnapshotResyncer
	schedule string
	timeout  time.Duration

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewReconcileScheduler(resyncer SnapshotResyncer, schedule string) *ReconcileScheduler {
	if schedule == "" {
		schedule = DefaultReconcileSchedule
	}
	return &ReconcileScheduler{
		resyncer: resyncer,
		schedule: schedule,
		timeout:  time.Minute,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers the reconcile job and starts the cron loop. The scheduler
// stops by itself when ctx is cancelled.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.schedule, s.runReconcile)
	if err != nil {
		return fmt.Errorf("failed to schedule reconcile job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.schedule, time.Now())
	log.Printf("Reconcile scheduler: started with schedule '%s'. Next run: %v", s.schedule, nextRun)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for a running reconcile to finish.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	done := s.cron.Stop()
	<-done.Done()

	s.cron.Remove(s.entryID)
	s.isRunning = false
	if s.cancelFunc != nil {
		s.cancelFunc()
		s.cancelFunc = nil
	}

	log.Printf("Reconcile scheduler: stopped")
}

// RunNow triggers a reconcile in the background.
func (s *ReconcileScheduler) RunNow() {
	go s.runReconcile()
}

func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns nil when the scheduler is not running.
func (s *ReconcileScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

func (s *ReconcileScheduler) runReconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	startTime := time.Now()
	if err := s.resyncer.ResyncSnapshot(ctx); err != nil {
		log.Printf("Reconcile: snapshot resync failed: %v", err)
		return
	}
	log.Printf("Reconcile: snapshot rewritten in %v", time.Since(startTime).Round(time.Millisecond))
}
