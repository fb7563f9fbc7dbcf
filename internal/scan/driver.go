package scan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"go.minekube.com/slpwatch/internal/config"
	"go.minekube.com/slpwatch/internal/model"
	"go.minekube.com/slpwatch/internal/pipeline"
)

// backpressureRetryDelay matches spec.md §4.4's "await when queue is
// full, retry every 50ms".
const backpressureRetryDelay = 50 * time.Millisecond

// Run drives a full scan per spec.md §4.4/§8 scenario 6: expand
// targets, optionally ping-filter and/or delegate to nmap, feed the
// pipeline with backpressure, wait for the queue to drain, then write
// the final snapshot.
func Run(ctx context.Context, cfg config.ScannerConfig) error {
	targets, err := buildTargets(ctx, cfg)
	if err != nil {
		return err
	}
	zap.S().Infof("expanded %d targets", len(targets))

	hosts := model.NewHostList()
	state := pipeline.NewAppState(hosts, pipeline.DefaultCapacity)

	pool := pipeline.NewPool(state, pipeline.Config{
		Mode:     pipeline.ScannerMode,
		Workers:  cfg.Runners,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
		Verifier: nil, // scanner skips opportunistic verification (spec.md §4.4 step 5)
	})

	poolDone := make(chan error, 1)
	go func() { poolDone <- pool.Run(ctx) }()

	if err := enqueueWithBackpressure(ctx, state, targets); err != nil {
		return err
	}

	waitForDrain(ctx, state)
	state.Shutdown()
	<-poolDone

	if err := hosts.Save(cfg.Output); err != nil {
		return fmt.Errorf("scan: writing final snapshot: %w", err)
	}
	zap.S().Infof("wrote snapshot to %s", cfg.Output)
	return nil
}

func buildTargets(ctx context.Context, cfg config.ScannerConfig) ([]Target, error) {
	if cfg.Nmap {
		targets, err := RunNmap(ctx, cfg.NmapPath, cfg.Target)
		if err != nil {
			return nil, err
		}
		return targets, nil
	}

	hostList, err := ExpandHosts(cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("scan: expanding target: %w", err)
	}
	if cfg.PingScan {
		filter := NewPingFilter(cfg.PingScanRunners)
		hostList = filter.FilterReachable(ctx, hostList)
	}

	ports, err := ExpandPorts(cfg.Ports)
	if err != nil {
		return nil, fmt.Errorf("scan: expanding ports: %w", err)
	}

	return BuildTargets(hostList, ports, cfg.RandomizeHosts, cfg.RandomizePorts), nil
}

func enqueueWithBackpressure(ctx context.Context, state *pipeline.AppState, targets []Target) error {
	for _, t := range targets {
		item := pipeline.Item{Host: t.Host, Port: t.Port}
		for !state.Queue.TryPut(item) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backpressureRetryDelay):
			}
		}
	}
	return nil
}

// waitForDrain blocks until the queue is empty, giving in-flight
// workers a chance to finish before the final snapshot is written
// (spec.md §4.4: "waits until the queue drains before serializing the
// final snapshot").
func waitForDrain(ctx context.Context, state *pipeline.AppState) {
	for state.Queue.Len() > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(backpressureRetryDelay):
		}
	}
	// Give the last popped-but-still-processing items a moment before
	// shutdown; Shutdown stops workers only after their current item,
	// and Run waits for the pool to return before saving.
	time.Sleep(backpressureRetryDelay)
}
