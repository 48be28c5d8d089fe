// Package engine implements a small pull-based audio graph for synthesis demos.
//
// A [Context] owns a monotonic sample clock and a [Destination]. Nodes
// ([Oscillator], [Delay], [Gain], [Analyser]) are connected into a graph that
// the context renders in quanta of [RenderQuantum] frames whenever the output
// device asks for samples via [Context.Render]. Parameter changes are
// fire-and-forget events applied at the next quantum boundary.
//
// All graph mutation, parameter events and rendering are serialized by the
// context, so nodes may be controlled from one goroutine while a device
// renders from another.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// State is the lifecycle state of a Context.
type State int

const (
	// StateSuspended is the initial state; rendering yields silence and the clock is frozen.
	StateSuspended State = iota

	// StateRunning renders the graph and advances the clock.
	StateRunning

	// StateClosed is terminal; the context no longer accepts nodes or events.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSuspended:
		return "suspended"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Common errors returned by the engine.
var (
	// ErrClosed indicates the context has been closed.
	ErrClosed = errors.New("audio context closed")

	// ErrInvalidState indicates an operation not allowed in the node's current state,
	// such as stopping an oscillator twice.
	ErrInvalidState = errors.New("invalid node state")

	// ErrNotConnected indicates Disconnect was called on a node with no outputs.
	ErrNotConnected = errors.New("node not connected")

	// ErrInvalidValue indicates an out-of-range or non-finite argument.
	ErrInvalidValue = errors.New("invalid value")

	// ErrForeignNode indicates an attempt to connect nodes of different contexts.
	ErrForeignNode = errors.New("node belongs to another context")
)

// Context is an audio processing context: a sample clock plus the node graph
// rendered against it.
type Context struct {
	mu         sync.Mutex
	sampleRate float64
	frame      int64
	state      State
	dest       *Destination

	// autoPull holds nodes rendered every quantum even without a path to the destination.
	autoPull map[*node]struct{}

	quantum    [RenderQuantum]float64
	quantumOff int
}

// NewContext creates a suspended context at the given sample rate.
func NewContext(sampleRate float64) (*Context, error) {
	if math.IsNaN(sampleRate) || sampleRate < MinSampleRate || sampleRate > MaxSampleRate {
		return nil, fmt.Errorf("%w: sample rate %v outside [%v, %v]",
			ErrInvalidValue, sampleRate, MinSampleRate, MaxSampleRate)
	}

	c := &Context{
		sampleRate: sampleRate,
		state:      StateSuspended,
		autoPull:   make(map[*node]struct{}),
		quantumOff: RenderQuantum,
	}
	d := &Destination{}
	d.node = newNode(c, KindDestination, d, true, false)
	c.dest = d
	return c, nil
}

// SampleRate returns the context sample rate in Hz.
func (c *Context) SampleRate() float64 {
	return c.sampleRate
}

// CurrentTime returns the time in seconds of the next frame to be rendered.
func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / c.sampleRate
}

// State returns the current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Resume starts rendering. It returns ctx.Err() if ctx is already done and
// ErrClosed after Close.
func (c *Context) Resume(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateRunning
	return nil
}

// Suspend stops rendering and freezes the clock.
func (c *Context) Suspend() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	c.state = StateSuspended
	return nil
}

// Close releases the graph. Closing twice is a no-op.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateClosed
	clear(c.autoPull)
	return nil
}

// Destination returns the context's output node.
func (c *Context) Destination() *Destination {
	return c.dest
}

// Render fills out with the next len(out) mono frames. While the context is
// not running it writes silence and leaves the clock untouched. It always
// returns len(out).
func (c *Context) Render(out []float32) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		clear(out)
		return len(out)
	}

	for n := 0; n < len(out); {
		if c.quantumOff >= RenderQuantum {
			c.renderQuantum()
		}
		for c.quantumOff < RenderQuantum && n < len(out) {
			out[n] = float32(c.quantum[c.quantumOff])
			c.quantumOff++
			n++
		}
	}
	return len(out)
}

// renderQuantum pulls one quantum through the graph. Caller holds c.mu.
func (c *Context) renderQuantum() {
	frame := c.frame
	copy(c.quantum[:], c.dest.pull(frame))

	for n := range c.autoPull {
		if n.wired && len(n.inputs) == 0 && len(n.outputs) == 0 {
			delete(c.autoPull, n)
			continue
		}
		n.pull(frame)
	}

	c.quantumOff = 0
	c.frame += RenderQuantum
}

// frameAt converts a time in seconds to the nearest frame index.
func (c *Context) frameAt(t float64) int64 {
	return int64(math.Round(t * c.sampleRate))
}

// Batch runs fn with the context locked, so every change made through tx
// lands in the same render quantum.
func (c *Context) Batch(fn func(tx *Tx) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return ErrClosed
	}
	return fn(&Tx{c: c})
}

// Tx applies changes inside Context.Batch.
type Tx struct {
	c *Context
}

// Now returns the context time at which the batch applies.
func (tx *Tx) Now() float64 {
	return tx.c.now()
}

// Set schedules p to change to v at the batch time.
func (tx *Tx) Set(p *Param, v float64) error {
	if p.ctx != tx.c {
		return ErrForeignNode
	}
	return p.setLocked(v, tx.c.now())
}

// Start starts o at the batch time.
func (tx *Tx) Start(o *Oscillator) error {
	if o.ctx != tx.c {
		return ErrForeignNode
	}
	return o.startLocked(tx.c.now())
}

// Stop stops o at the batch time.
func (tx *Tx) Stop(o *Oscillator) error {
	if o.ctx != tx.c {
		return ErrForeignNode
	}
	return o.stopLocked(tx.c.now())
}

// TimeDomainData copies the window of a into dst as Analyser.TimeDomainData
// does, so several taps can be read at the same render position.
func (tx *Tx) TimeDomainData(a *Analyser, dst []float64) int {
	if a.ctx != tx.c {
		return 0
	}
	return a.win.Peek(dst)
}

// Destination is the final node of a context's graph; its input is the
// context's rendered output.
type Destination struct {
	*node
}

func (d *Destination) process(in, out []float64, _ int64) {
	copy(out, in)
}
