package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"go.minekube.com/slpwatch/internal/model"
	"go.minekube.com/slpwatch/internal/slp"
	"go.minekube.com/slpwatch/internal/verify"
)

// Verifier is the subset of verify.Verifier the pool needs, so tests
// can stub it out.
type Verifier interface {
	VerifyIfStale(ctx context.Context, p *model.Player)
}

// Mode selects the worker pool's success/failure handling, which
// differs between the scanner and the tracker (spec.md §4.4 step 3-4).
type Mode int

const (
	// ScannerMode upserts a fresh Server into the HostList on success
	// and silently drops the target on failure.
	ScannerMode Mode = iota
	// TrackerMode mutates the already-known Server in place and marks
	// it inactive on failure.
	TrackerMode
)

// Config configures a worker Pool.
type Config struct {
	Mode     Mode
	Workers  int
	Protocol int32
	Timeout  time.Duration
	Verifier Verifier // nil disables opportunistic verification (always nil in ScannerMode)
}

// Pool is a fixed-size worker pool draining an AppState's Queue.
type Pool struct {
	state *AppState
	cfg   Config
}

// NewPool constructs a worker Pool over state with the given Config.
func NewPool(state *AppState, cfg Config) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 16
	}
	if cfg.Protocol == 0 {
		cfg.Protocol = slp.ProtocolAnyVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = slp.DefaultTimeout
	}
	return &Pool{state: state, cfg: cfg}
}

// Run starts cfg.Workers goroutines that loop popping items from the
// queue until ctx is cancelled or the AppState is shut down, then
// blocks until all of them return. Each worker runs its current query
// to completion rather than being interrupted mid-flight on shutdown
// (spec.md §5 "Cancellation").
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		id := i
		g.Go(func() error {
			p.loop(gctx, id)
			return nil
		})
	}
	return g.Wait()
}

func (p *Pool) loop(ctx context.Context, id int) {
	for p.state.Running.Load() {
		item, ok := p.state.Queue.Pop(ctx)
		if !ok {
			return
		}
		p.handle(ctx, item)
	}
}

func (p *Pool) handle(ctx context.Context, item Item) {
	queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.Timeout)
	defer cancel()

	switch p.cfg.Mode {
	case ScannerMode:
		status, failure := slp.Query(queryCtx, item.Host, item.Port, p.cfg.Protocol, p.cfg.Timeout)
		if failure != nil {
			// Scanner simply drops unreachable targets.
			return
		}
		server := p.state.Hosts.UpsertServer(item.Host, item.Port)
		server.ParseStatus(status)

	case TrackerMode:
		srv := item.Server
		if srv == nil {
			return
		}
		host, port := srv.Host().Address, srv.Port
		status, failure := slp.Query(queryCtx, host, port, p.cfg.Protocol, p.cfg.Timeout)
		if failure != nil {
			zap.L().Debug("poll failed", zap.String("host", host), zap.Uint16("port", port), zap.String("kind", failure.Kind.String()))
			srv.MarkInactive()
			return
		}
		srv.ParseStatus(status)

		if p.cfg.Verifier != nil {
			for _, player := range srv.Players() {
				p.cfg.Verifier.VerifyIfStale(ctx, player)
			}
		}
	}
}

var _ Verifier = (*verify.Verifier)(nil)
