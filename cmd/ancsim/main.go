// Command ancsim demonstrates active noise cancellation: a reference tone and
// a delayed, optionally inverted copy of it are summed so their interference
// can be heard and seen.
//
// Usage:
//
//	ancsim [gui|tui|render|script] [flags] [script.lua]
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	opts, err := parseArgs(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	logger, err := newLogger(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting",
		zap.String("command", opts.command),
		zap.String("output", opts.sim.Output),
		zap.Float64("frequency", opts.sim.Frequency),
		zap.Float64("phase", opts.sim.Phase),
		zap.Bool("invert", opts.sim.Invert))

	switch opts.command {
	case cmdTUI:
		return runTUI(ctx, opts, logger)
	case cmdRender:
		return runRender(ctx, opts, logger)
	case cmdScript:
		return runScript(ctx, opts, logger)
	default:
		return runGUI(ctx, opts, logger)
	}
}

// withDiagnostics runs fn on the calling goroutine, serving the diagnostics
// endpoint alongside it when an address is configured. fn must return once
// its context is done.
func withDiagnostics(ctx context.Context, opts options, sim *ancsim.Simulator, logger *zap.Logger, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if opts.debugAddr != "" {
		srv := server.New(sim, sim.Metrics().Registry, logger)
		g.Go(func() error { return srv.ListenAndServe(gctx, opts.debugAddr) })
	}

	runErr := fn(gctx)
	cancel()
	return errors.Join(runErr, g.Wait())
}

// newSimulator creates a simulator, warning when no audio is available.
func newSimulator(opts options, logger *zap.Logger, extra ...ancsim.Option) (*ancsim.Simulator, error) {
	sim, err := ancsim.New(opts.sim, append([]ancsim.Option{ancsim.WithLogger(logger)}, extra...)...)
	if err != nil {
		return nil, err
	}
	if !sim.Available() {
		logger.Warn("audio unavailable; the simulator cannot start")
	}
	return sim, nil
}
