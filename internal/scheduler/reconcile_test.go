package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingResyncer struct {
	calls atomic.Int32
	err   error
	done  chan struct{}
}

func (r *countingResyncer) ResyncSnapshot(ctx context.Context) error {
	r.calls.Add(1)
	if r.done != nil {
		r.done <- struct{}{}
	}
	return r.err
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("0 * * * *"))
	assert.NoError(t, ValidateSchedule("*/15 2 * * 1-5"))
	assert.Error(t, ValidateSchedule("every hour"))
	assert.Error(t, ValidateSchedule("0 0 * * * *"))
}

func TestNextRunTime(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)

	next, err := NextRunTime("0 * * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), next)

	_, err = NextRunTime("bogus", from)
	assert.Error(t, err)
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	s := NewReconcileScheduler(&countingResyncer{}, "")
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	next := s.GetNextRunTime()
	require.NotNil(t, next)
	assert.Equal(t, 0, next.Minute())

	// second start is a no-op
	require.NoError(t, s.Start(context.Background()))

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.GetNextRunTime())
}

func TestReconcileScheduler_InvalidSchedule(t *testing.T) {
	s := NewReconcileScheduler(&countingResyncer{}, "not a schedule")
	err := s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestReconcileScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewReconcileScheduler(&countingResyncer{}, "")
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))

	cancel()
	assert.Eventually(t, func() bool { return !s.IsRunning() }, 2*time.Second, 10*time.Millisecond)
}

func TestReconcileScheduler_RunNow(t *testing.T) {
	resyncer := &countingResyncer{err: errors.New("disk full"), done: make(chan struct{}, 1)}
	s := NewReconcileScheduler(resyncer, "")

	s.RunNow()

	select {
	case <-resyncer.done:
		assert.Equal(t, int32(1), resyncer.calls.Load())
	case <-time.After(2 * time.Second):
		t.Fatal("reconcile did not run")
	}
}
