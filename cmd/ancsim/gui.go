//go:build !headless

package main

import (
	"context"

	"go.uber.org/zap"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
	"github.com/priyangsubanerjee/anc-simulator/internal/ui"
)

// runGUI opens the window. It must run on the main goroutine.
func runGUI(ctx context.Context, opts options, logger *zap.Logger) error {
	surface := ui.NewSurface(ui.Width, ui.PlotHeight)
	frames := render.NewFrameQueue()

	sim, err := newSimulator(opts, logger, ancsim.WithSurface(surface), ancsim.WithScheduler(frames))
	if err != nil {
		return err
	}
	defer func() { _ = sim.Close() }()

	return withDiagnostics(ctx, opts, sim, logger, func(ctx context.Context) error {
		return ui.Run(ctx, ui.NewGame(ctx, sim, frames, surface, logger))
	})
}
