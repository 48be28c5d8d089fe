// Package tui is the terminal front end: the three traces drawn as a
// character grid with a status bar, driven by the keyboard.
package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
	"github.com/priyangsubanerjee/anc-simulator/internal/controls"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
)

const (
	// statusRows are reserved below the plot.
	statusRows = 4

	// measureEvery is the number of frames between measurements.
	measureEvery = 6

	defaultCols = 80
	defaultRows = 24
)

// Simulator is what the terminal front end needs from the simulator.
type Simulator interface {
	controls.Target
	Running() bool
	Available() bool
	Measure() (analysis.Report, error)
}

// Terminal is the pair of streams the app talks to. Fd is the descriptor
// switched to raw mode and queried for its size; -1 skips both.
type Terminal struct {
	In  io.Reader
	Out io.Writer
	Fd  int
}

// Stdio returns the process terminal.
func Stdio() Terminal {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		fd = -1
	}
	return Terminal{In: os.Stdin, Out: os.Stdout, Fd: fd}
}

// App owns the text surface and paints it after every ticker flush.
type App struct {
	sim    Simulator
	ticker *render.Ticker
	text   *render.Text
	term   Terminal
	log    *zap.Logger

	out      *bufio.Writer
	frames   int
	measured *analysis.Report

	mu      sync.Mutex
	lastErr error
}

// New wires an app to sim. ticker must be the scheduler the simulator was
// created with and text the surface it draws on.
func New(sim Simulator, ticker *render.Ticker, text *render.Text, t Terminal, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{
		sim:    sim,
		ticker: ticker,
		text:   text,
		term:   t,
		log:    logger,
		out:    bufio.NewWriter(t.Out),
	}
	ticker.AfterFlush(func(int) { a.paint() })
	return a
}

// Run takes over the terminal until q, Esc or Ctrl-C is pressed or ctx is
// done.
func (a *App) Run(ctx context.Context) error {
	if a.term.Fd >= 0 {
		old, err := term.MakeRaw(a.term.Fd)
		if err != nil {
			return fmt.Errorf("enter raw mode: %w", err)
		}
		defer func() { _ = term.Restore(a.term.Fd, old) }()
	}

	a.write(enterAltScreen + clearScreen + hideCursor)
	defer a.write(showCursor + exitAltScreen)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// readKeys stays blocked in Read after quit until the next key or EOF;
	// the process exits right after Run returns.
	keys := make(chan keyPress, 16)
	go readKeys(ctx, a.term.In, keys)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.ticker.Run(gctx) })
	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case kp, ok := <-keys:
				if !ok {
					keys = nil
					continue
				}
				err := controls.Apply(gctx, a.sim, kp.action, kp.fine)
				if errors.Is(err, controls.ErrQuit) {
					return nil
				}
				if err != nil {
					a.log.Warn("control action failed", zap.Stringer("action", kp.action), zap.Error(err))
				}
				a.setErr(err)
			}
		}
	})
	return g.Wait()
}

// readKeys forwards decoded keys until r fails or ctx is done.
func readKeys(ctx context.Context, r io.Reader, keys chan<- keyPress) {
	defer close(keys)
	buf := make([]byte, 64)
	for {
		n, err := r.Read(buf)
		for _, kp := range parseKeys(buf[:n]) {
			select {
			case keys <- kp:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (a *App) setErr(err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

func (a *App) getErr() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// paint runs on the ticker goroutine, after the render loop drew into text.
func (a *App) paint() {
	cols, rows := a.size()
	a.text.Resize(cols, max(rows-statusRows, 1))

	st := controls.Status{
		Params:    a.sim.Params(),
		Running:   a.sim.Running(),
		Available: a.sim.Available(),
	}
	if !st.Running {
		a.text.Clear()
		a.measured = nil
	} else if a.frames%measureEvery == 0 {
		if r, err := a.sim.Measure(); err == nil {
			a.measured = &r
		}
	}
	st.Measured = a.measured
	a.frames++

	_, _ = a.out.WriteString(cursorHome)
	_, _ = a.text.WriteTo(a.out)
	lines := append(st.Lines(), controls.Help)
	if err := a.getErr(); err != nil {
		lines = append(lines, err.Error())
	}
	for i, line := range lines {
		if i >= statusRows {
			break
		}
		_, _ = a.out.WriteString(statusBar(line, cols) + "\r\n")
	}
	_ = a.out.Flush()
}

func (a *App) size() (cols, rows int) {
	if a.term.Fd < 0 {
		return defaultCols, defaultRows
	}
	w, h, err := term.GetSize(a.term.Fd)
	if err != nil || w <= 0 || h <= 0 {
		return defaultCols, defaultRows
	}
	return w, h
}

func (a *App) write(s string) {
	_, _ = a.out.WriteString(s)
	_ = a.out.Flush()
}

// statusBar pads or truncates text to width cells, in reverse video.
func statusBar(text string, width int) string {
	r := []rune(text)
	if len(r) > width {
		r = r[:width]
	}
	return reverseVideo + string(r) + strings.Repeat(" ", width-len(r)) + resetStyle
}

const (
	clearScreen    = "\x1b[2J"
	cursorHome     = "\x1b[H"
	hideCursor     = "\x1b[?25l"
	showCursor     = "\x1b[?25h"
	enterAltScreen = "\x1b[?1049h"
	exitAltScreen  = "\x1b[?1049l\x1b[0m"
	reverseVideo   = "\x1b[7m"
	resetStyle     = "\x1b[0m"
)
