package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/device"
	"github.com/priyangsubanerjee/anc-simulator/internal/export"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
	"github.com/priyangsubanerjee/anc-simulator/internal/script"
	"github.com/priyangsubanerjee/anc-simulator/internal/tui"
)

// renderChunk is the number of frames rendered per call when a script
// sleeps on an offline engine.
const renderChunk = 1024

func runTUI(ctx context.Context, opts options, logger *zap.Logger) error {
	ticker := render.NewTicker(render.DefaultFrameInterval)
	text := render.NewText(1, 1)

	sim, err := newSimulator(opts, logger, ancsim.WithSurface(text), ancsim.WithScheduler(ticker))
	if err != nil {
		return err
	}
	defer func() { _ = sim.Close() }()

	app := tui.New(sim, ticker, text, tui.Stdio(), logger)
	return withDiagnostics(ctx, opts, sim, logger, app.Run)
}

// runRender renders the configured scene offline to a WAV file and, when
// asked, the final traces to a PNG.
func runRender(ctx context.Context, opts options, logger *zap.Logger) error {
	sim, err := newSimulator(opts, logger)
	if err != nil {
		return err
	}
	defer func() { _ = sim.Close() }()

	if err := sim.Start(ctx); err != nil {
		return err
	}
	defer sim.Stop()

	return withDiagnostics(ctx, opts, sim, logger, func(ctx context.Context) error {
		n, err := export.Render(ctx, sim.Engine(), opts.wavPath, opts.exportOptions())
		if err != nil {
			return err
		}

		report, err := sim.Measure()
		if err != nil {
			return err
		}
		logger.Info("rendered",
			zap.String("path", opts.wavPath),
			zap.Int("samples", n),
			zap.Float64("sum_peak", report.Sum.Peak),
			zap.Float64("cancellation_db", report.CancellationDB))
		fmt.Printf("%s: %d samples, sum peak %.3f (expected %.3f), cancellation %.1f dB\n",
			opts.wavPath, n, report.Sum.Peak,
			ancsim.ExpectedSumAmplitude(sim.Params().Phase, sim.Params().Invert),
			report.CancellationDB)

		if opts.pngPath != "" {
			return writeSnapshot(sim, opts.pngPath)
		}
		return nil
	})
}

func writeSnapshot(sim *ancsim.Simulator, path string) error {
	taps, ok := sim.Taps()
	if !ok {
		return ancsim.ErrNotRunning
	}
	raster := render.NewRaster(snapshotWidth, snapshotHeight)
	render.NewRenderer(raster).Draw(taps)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := raster.EncodePNG(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// runScript runs a Lua lesson. With the offline output, sleep() renders the
// engine forward instead of waiting.
func runScript(ctx context.Context, opts options, logger *zap.Logger) error {
	sim, err := newSimulator(opts, logger)
	if err != nil {
		return err
	}
	defer func() { _ = sim.Close() }()

	ropts := []script.Option{script.WithOutput(func(line string) { fmt.Println(line) })}
	if sim.OutputName() == device.KindNone {
		ropts = append(ropts, script.WithSleeper(offlineSleeper(sim)))
	}
	runner := script.New(sim, logger, ropts...)

	return withDiagnostics(ctx, opts, sim, logger, func(ctx context.Context) error {
		defer sim.Stop()
		err := runner.RunFile(ctx, opts.scriptPath)
		if script.IsCanceled(err) {
			return nil
		}
		return err
	})
}

// offlineSleeper advances the engine by d of audio time.
func offlineSleeper(sim *ancsim.Simulator) script.Sleeper {
	return func(ctx context.Context, d time.Duration) error {
		eng := sim.Engine()
		if eng == nil {
			return ancsim.ErrEngineUnavailable
		}
		frames := int(d.Seconds() * eng.SampleRate())
		buf := make([]float32, renderChunk)
		for frames > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			n := min(frames, renderChunk)
			eng.Render(buf[:n])
			frames -= n
		}
		return nil
	}
}
