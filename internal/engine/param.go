package engine

import (
	"fmt"
	"math"
	"sort"
)

// Param is an automatable node parameter. Values are clamped to the
// parameter's nominal range; scheduled changes take effect at the first
// quantum boundary at or after their time.
type Param struct {
	ctx      *Context
	name     string
	value    float64
	min, max float64
	events   []paramEvent
}

type paramEvent struct {
	frame int64
	value float64
}

func newParam(c *Context, name string, value, minVal, maxVal float64) *Param {
	return &Param{
		ctx:   c,
		name:  name,
		value: value,
		min:   minVal,
		max:   maxVal,
	}
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.name }

// Range returns the nominal range.
func (p *Param) Range() (minVal, maxVal float64) { return p.min, p.max }

// Value returns the value currently in effect.
func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.value
}

// SetValueAtTime schedules the parameter to become v at time t (seconds).
// Times at or before the current time apply from the next quantum.
func (p *Param) SetValueAtTime(v, t float64) error {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	if p.ctx.state == StateClosed {
		return ErrClosed
	}
	return p.setLocked(v, t)
}

// SetValue is SetValueAtTime at the context's current time.
func (p *Param) SetValue(v float64) error {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()

	if p.ctx.state == StateClosed {
		return ErrClosed
	}
	return p.setLocked(v, p.ctx.now())
}

func (p *Param) setLocked(v, t float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s value %v", ErrInvalidValue, p.name, v)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fmt.Errorf("%w: %s time %v", ErrInvalidValue, p.name, t)
	}
	v = min(max(v, p.min), p.max)

	frame := p.ctx.frameAt(t)
	if frame <= p.ctx.frame {
		p.value = v
		return nil
	}

	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].frame > frame })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = paramEvent{frame: frame, value: v}
	return nil
}

// advance applies events due by frame and returns the value for the quantum.
// Caller holds ctx.mu.
func (p *Param) advance(frame int64) float64 {
	n := 0
	for n < len(p.events) && p.events[n].frame <= frame {
		p.value = p.events[n].value
		n++
	}
	if n > 0 {
		p.events = p.events[n:]
	}
	return p.value
}
