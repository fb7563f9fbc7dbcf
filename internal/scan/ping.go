package scan

import (
	"context"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// pingTimeout is the default ICMP pre-scan timeout (spec.md §5).
const pingTimeout = 10 * time.Second

// PingFilter narrows a host list down to reachable ones. spec.md §1
// treats ICMP pre-filtering as "delegated to a platform helper" —
// contract-only from this system's point of view.
type PingFilter interface {
	FilterReachable(ctx context.Context, hosts []string) []string
}

// systemPingFilter shells out to the platform's `ping` binary, bounded
// by runners concurrent probes via a weighted semaphore (teacher
// dependency family golang.org/x/sync).
type systemPingFilter struct {
	runners int
	timeout time.Duration
}

// NewPingFilter returns the default PingFilter implementation, pacing
// at most runners concurrent ping processes.
func NewPingFilter(runners int) PingFilter {
	if runners <= 0 {
		runners = 16
	}
	return &systemPingFilter{runners: runners, timeout: pingTimeout}
}

func (f *systemPingFilter) FilterReachable(ctx context.Context, hosts []string) []string {
	if len(hosts) == 0 {
		return nil
	}

	sem := semaphore.NewWeighted(int64(f.runners))
	results := make([]bool, len(hosts))

	var wg sync.WaitGroup
	for i, host := range hosts {
		i, host := i, host
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			results[i] = f.ping(ctx, host)
		}()
	}
	wg.Wait()

	var out []string
	for i, ok := range results {
		if ok {
			out = append(out, hosts[i])
		}
	}
	return out
}

func (f *systemPingFilter) ping(ctx context.Context, host string) bool {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	args := pingArgs(host)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	return cmd.Run() == nil
}

func pingArgs(host string) []string {
	if runtime.GOOS == "windows" {
		return []string{"ping", "-n", "1", "-w", "2000", host}
	}
	return []string{"ping", "-c", "1", "-W", "2", host}
}
