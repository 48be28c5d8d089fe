package engine

import (
	"fmt"
	"math"
)

// Delay outputs its input shifted later in time by DelayTime seconds.
// Fractional delays are linearly interpolated.
type Delay struct {
	*node

	// DelayTime in seconds, in [0, MaxDelay()].
	DelayTime *Param

	maxDelay float64
	buf      []float64
	w        int
}

// NewDelay creates a delay line able to hold maxDelay seconds.
func (c *Context) NewDelay(maxDelay float64) (*Delay, error) {
	if math.IsNaN(maxDelay) || maxDelay <= 0 || maxDelay > MaxDelayLimit {
		return nil, fmt.Errorf("%w: max delay %v outside (0, %v]", ErrInvalidValue, maxDelay, MaxDelayLimit)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil, ErrClosed
	}
	d := &Delay{
		DelayTime: newParam(c, "delayTime", 0, 0, maxDelay),
		maxDelay:  maxDelay,
		buf:       make([]float64, int(math.Ceil(maxDelay*c.sampleRate))+delayGuardFrames),
	}
	d.node = newNode(c, KindDelay, d, true, true)
	return d, nil
}

// MaxDelay returns the delay line capacity in seconds.
func (d *Delay) MaxDelay() float64 { return d.maxDelay }

func (d *Delay) process(in, out []float64, frame int64) {
	delay := d.DelayTime.advance(frame) * d.ctx.sampleRate
	n := len(d.buf)
	size := float64(n)

	for i, x := range in {
		d.buf[d.w] = x

		pos := float64(d.w) - delay
		if pos < 0 {
			pos += size
		}
		i0 := int(pos)
		frac := pos - float64(i0)
		i0 %= n
		i1 := (i0 + 1) % n
		out[i] = d.buf[i0]*(1-frac) + d.buf[i1]*frac

		d.w++
		if d.w == n {
			d.w = 0
		}
	}
}
