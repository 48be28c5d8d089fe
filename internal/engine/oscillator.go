package engine

import (
	"fmt"
	"math"
)

// Oscillator is a continuous sine generator.
//
// An oscillator produces silence until started and after it is stopped. Its
// phase is referenced to the scheduled start time, so two oscillators started
// at the same time with the same frequency stay sample-aligned even if a
// quantum is rendered between the two Start calls.
type Oscillator struct {
	*node

	// Frequency in Hz, in [0, Nyquist].
	Frequency *Param

	phase      float64
	startFrame int64
	stopFrame  int64
	started    bool
	stopped    bool
	running    bool
}

// NewOscillator creates an unstarted sine oscillator at DefaultOscillatorFrequency.
func (c *Context) NewOscillator() (*Oscillator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil, ErrClosed
	}
	o := &Oscillator{
		Frequency: newParam(c, "frequency", DefaultOscillatorFrequency, 0, c.sampleRate/2),
	}
	o.node = newNode(c, KindOscillator, o, false, true)
	return o, nil
}

// Start schedules the oscillator to begin at time when (seconds).
// Starting twice returns ErrInvalidState.
func (o *Oscillator) Start(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.startLocked(when)
}

// Stop schedules the oscillator to end at time when (seconds).
// Stopping an unstarted or already stopped oscillator returns ErrInvalidState.
func (o *Oscillator) Stop(when float64) error {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	return o.stopLocked(when)
}

func (o *Oscillator) startLocked(when float64) error {
	if o.ctx.state == StateClosed {
		return ErrClosed
	}
	if o.started {
		return fmt.Errorf("%w: oscillator already started", ErrInvalidState)
	}
	if math.IsNaN(when) || when < 0 {
		return fmt.Errorf("%w: start time %v", ErrInvalidValue, when)
	}
	o.startFrame = o.ctx.frameAt(when)
	o.started = true
	return nil
}

func (o *Oscillator) stopLocked(when float64) error {
	if !o.started {
		return fmt.Errorf("%w: oscillator not started", ErrInvalidState)
	}
	if o.stopped {
		return fmt.Errorf("%w: oscillator already stopped", ErrInvalidState)
	}
	if math.IsNaN(when) || when < 0 {
		return fmt.Errorf("%w: stop time %v", ErrInvalidValue, when)
	}
	o.stopFrame = max(o.ctx.frameAt(when), o.startFrame)
	o.stopped = true
	return nil
}

func (o *Oscillator) process(_, out []float64, frame int64) {
	inc := o.Frequency.advance(frame) / o.ctx.sampleRate

	for i := range out {
		f := frame + int64(i)
		if !o.started || f < o.startFrame || (o.stopped && f >= o.stopFrame) {
			out[i] = 0
			continue
		}
		if !o.running {
			// Late start: catch the phase up to where it would be had we started on time.
			_, o.phase = math.Modf(float64(f-o.startFrame) * inc)
			o.running = true
		}
		out[i] = math.Sin(2 * math.Pi * o.phase)
		_, o.phase = math.Modf(o.phase + inc)
	}
}
