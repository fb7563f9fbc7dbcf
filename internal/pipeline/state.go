package pipeline

import (
	"go.uber.org/atomic"

	"go.minekube.com/slpwatch/internal/model"
)

// AppState bundles the process-wide mutable singletons spec.md §9
// calls for — the HostList graph, the work queue, and the running
// flag — into one explicit value threaded through the scheduler,
// workers, and drivers. No globals.
type AppState struct {
	Hosts   *model.HostList
	Queue   *Queue
	Running *atomic.Bool
}

// NewAppState constructs a running AppState over hosts with a queue of
// the given capacity (DefaultCapacity if <= 0).
func NewAppState(hosts *model.HostList, queueCapacity int) *AppState {
	running := atomic.NewBool(true)
	return &AppState{
		Hosts:   hosts,
		Queue:   NewQueue(queueCapacity),
		Running: running,
	}
}

// Shutdown flips Running to false and closes the queue so blocked
// scheduler/worker loops unwind on their next iteration (spec.md §4.4
// "Shutdown").
func (s *AppState) Shutdown() {
	s.Running.Store(false)
	s.Queue.Close()
}
