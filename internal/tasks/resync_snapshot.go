package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// Resyncer rewrites the snapshot from the current store state.
type Resyncer interface {
	Resync(ctx context.Context) error
}

// ResyncSnapshotTask repairs a snapshot left stale by a failed export.
type ResyncSnapshotTask struct {
	Reason string `json:"reason"`
}

func (t ResyncSnapshotTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "resync_snapshot",
		MaxAttempts: 5,
		Backoff:     30 * time.Second,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ResyncSnapshotProcessor returns the processor for ResyncSnapshotTask.
// A returned error makes backlite retry with backoff.
func ResyncSnapshotProcessor(resyncer Resyncer) backlite.QueueProcessor[ResyncSnapshotTask] {
	return func(ctx context.Context, task ResyncSnapshotTask) error {
		if resyncer == nil {
			return fmt.Errorf("resyncer not configured")
		}
		if err := resyncer.Resync(ctx); err != nil {
			return fmt.Errorf("resync snapshot: %w", err)
		}
		log.Printf("[TASK] Snapshot repaired (reason: %s)", task.Reason)
		return nil
	}
}
