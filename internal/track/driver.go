package track

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"go.minekube.com/slpwatch/internal/config"
	"go.minekube.com/slpwatch/internal/model"
	"go.minekube.com/slpwatch/internal/pipeline"
	"go.minekube.com/slpwatch/internal/verify"
)

// Run drives the tracker: load the snapshot (fatal on failure per
// spec.md §7), start the worker pool, scheduler, and renderer, and
// shut down cleanly on ctx cancellation — mirroring
// cmd/gate/gate.go's signal-triggered graceful shutdown.
func Run(ctx context.Context, cfg config.TrackerConfig) error {
	hosts, err := loadOrInit(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("track: loading snapshot: %w", err)
	}

	state := pipeline.NewAppState(hosts, pipeline.DefaultCapacity)
	verifier := verify.New(5)

	pool := pipeline.NewPool(state, pipeline.Config{
		Mode:     pipeline.TrackerMode,
		Workers:  cfg.Runners,
		Verifier: verifier,
	})

	scheduler := pipeline.NewScheduler(state, func() error {
		return hosts.Save(cfg.StateFile)
	})

	poolDone := make(chan error, 1)
	go func() { poolDone <- pool.Run(ctx) }()

	schedDone := make(chan struct{})
	go func() {
		scheduler.Run(ctx)
		close(schedDone)
	}()

	renderer := NewRenderer(hosts, os.Stdout)
	renderDone := make(chan struct{})
	go func() {
		renderer.Run(ctx)
		close(renderDone)
	}()

	<-ctx.Done()
	zap.S().Info("shutting down tracker")
	state.Shutdown()

	<-schedDone
	<-renderDone
	<-poolDone

	if err := hosts.Save(cfg.StateFile); err != nil {
		// Snapshot save failures at shutdown are reported but must not
		// mask the original exit reason (spec.md §7).
		zap.S().Errorf("final snapshot save failed: %v", err)
	}
	return nil
}

// loadOrInit loads an existing snapshot, or starts from an empty
// HostList if the state file doesn't exist yet. A file that fails to
// decode as the JSON snapshot format is checked against the legacy
// pickle header (spec.md Design Notes migration path) so a leftover
// upstream snapshot surfaces an actionable migration error instead of
// a generic JSON-decode failure.
func loadOrInit(path string) (*model.HostList, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return model.NewHostList(), nil
	}
	hosts, err := model.Load(path)
	if err != nil {
		if _, legacyErr := model.LoadLegacy(path); legacyErr != nil {
			return nil, legacyErr
		}
		return nil, err
	}
	return hosts, nil
}
