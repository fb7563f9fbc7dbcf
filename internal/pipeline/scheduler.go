package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	// emptyQueueCheckpointDelay is how long the scheduler sleeps after
	// checkpointing and before re-enqueuing a full cycle.
	emptyQueueCheckpointDelay = 2500 * time.Millisecond
	// nonEmptyQueueRecheckDelay is how long the scheduler sleeps while
	// waiting for the current cycle to drain.
	nonEmptyQueueRecheckDelay = 500 * time.Millisecond
)

// Checkpointer persists the HostList; internal/model.HostList.Save
// satisfies this via a small adapter in the tracker driver.
type Checkpointer func() error

// Scheduler implements the tracker-only discipline from spec.md §4.4:
// when the queue is empty, checkpoint then re-enqueue every server in
// HostList iteration order; when non-empty, wait for the cycle to
// drain. This guarantees at-most-one-in-flight-per-target, since a
// server is only re-enqueued once the previous cycle has fully
// drained.
type Scheduler struct {
	state      *AppState
	checkpoint Checkpointer
}

// NewScheduler constructs a Scheduler over state, calling checkpoint
// each time the queue drains.
func NewScheduler(state *AppState, checkpoint Checkpointer) *Scheduler {
	return &Scheduler{state: state, checkpoint: checkpoint}
}

// Run loops the scheduler discipline until ctx is cancelled or the
// AppState stops running.
func (s *Scheduler) Run(ctx context.Context) {
	for s.state.Running.Load() && ctx.Err() == nil {
		if s.state.Queue.Len() == 0 {
			if err := s.checkpoint(); err != nil {
				zap.L().Error("checkpoint failed", zap.Error(err))
			}
			if !sleepOrDone(ctx, emptyQueueCheckpointDelay) {
				return
			}
			if !s.state.Running.Load() {
				return
			}
			s.enqueueCycle(ctx)
			continue
		}
		if !sleepOrDone(ctx, nonEmptyQueueRecheckDelay) {
			return
		}
	}
}

// enqueueCycle enqueues every server from the HostList in iteration
// order — spec.md §5 ordering guarantee and §8 "each Server is
// enqueued exactly once before any Server is enqueued twice".
func (s *Scheduler) enqueueCycle(ctx context.Context) {
	for _, server := range s.state.Hosts.AllServers() {
		if !s.state.Running.Load() || ctx.Err() != nil {
			return
		}
		if err := s.state.Queue.Put(ctx, Item{Server: server}); err != nil {
			return
		}
	}
}

// sleepOrDone sleeps for d, returning false early (and not having
// slept the full duration) if ctx is cancelled.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
