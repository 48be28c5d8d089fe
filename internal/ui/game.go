//go:build !headless

// Package ui is the ebiten front end: a window showing the three waveforms
// with a status overlay, driven by the keyboard.
package ui

import (
	"context"
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
	"github.com/priyangsubanerjee/anc-simulator/internal/controls"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
)

// Window geometry in pixels.
const (
	Width       = 800
	Height      = 360
	PlotHeight  = 280
	hudLineStep = 16
	hudMargin   = 8
)

// Key repeat timing in ticks.
const (
	repeatDelay    = 24
	repeatInterval = 3
)

// measureEvery is the number of ticks between HUD measurements.
const measureEvery = 6

var (
	hudBackground = color.RGBA{0x11, 0x18, 0x27, 0xff}
	hudText       = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	hudWarning    = color.RGBA{0xf5, 0x9e, 0x0b, 0xff}
)

// Simulator is what the window needs from the simulator.
type Simulator interface {
	controls.Target
	Running() bool
	Available() bool
	Measure() (analysis.Report, error)
}

// Game implements ebiten.Game.
type Game struct {
	ctx     context.Context
	sim     Simulator
	frames  *render.FrameQueue
	surface *Surface
	log     *zap.Logger

	ticks    int
	measured *analysis.Report
	lastErr  error
}

// NewGame wires a window to sim. frames must be the scheduler the simulator
// was created with and surface the surface it draws on.
func NewGame(ctx context.Context, sim Simulator, frames *render.FrameQueue, surface *Surface, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{ctx: ctx, sim: sim, frames: frames, surface: surface, log: logger}
}

// Run opens the window and blocks until it is closed, Esc is pressed or ctx
// is done.
func Run(ctx context.Context, g *Game) error {
	ebiten.SetWindowSize(Width, Height)
	ebiten.SetWindowTitle("ANC interference simulator")
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)

	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update runs the scheduled render callbacks and handles input.
func (g *Game) Update() error {
	if g.ctx.Err() != nil || ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}

	g.frames.Flush()

	actions, fine := pressedActions()
	for _, a := range actions {
		err := controls.Apply(g.ctx, g.sim, a, fine)
		switch {
		case errors.Is(err, controls.ErrQuit):
			return ebiten.Termination
		case err != nil:
			g.log.Warn("control action failed", zap.Stringer("action", a), zap.Error(err))
			g.lastErr = err
		default:
			g.lastErr = nil
		}
	}

	g.ticks++
	if g.ticks%measureEvery == 0 {
		g.measured = nil
		if r, err := g.sim.Measure(); err == nil {
			g.measured = &r
		}
	}
	return nil
}

// Draw copies the waveform image and overlays the status lines.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(hudBackground)
	screen.DrawImage(g.surface.Image(), nil)

	st := controls.Status{
		Params:    g.sim.Params(),
		Running:   g.sim.Running(),
		Available: g.sim.Available(),
	}
	if st.Running {
		st.Measured = g.measured
	}

	y := float64(PlotHeight + hudMargin)
	for _, line := range st.Lines() {
		clr := hudText
		if line == "audio unavailable" {
			clr = hudWarning
		}
		drawText(screen, line, y, clr)
		y += hudLineStep
	}
	if g.lastErr != nil {
		drawText(screen, g.lastErr.Error(), y, hudWarning)
	}
	drawText(screen, controls.Help, Height-hudMargin-hudLineStep, hudText)
}

var hudFace = text.NewGoXFace(basicfont.Face7x13)

// drawText draws one HUD line with its top edge at y.
func drawText(screen *ebiten.Image, line string, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(hudMargin, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, line, hudFace, op)
}

// Layout keeps a fixed logical size; ebiten scales it to the window.
func (g *Game) Layout(_, _ int) (int, int) {
	return Width, Height
}
