package engine

import (
	"math"

	"github.com/priyangsubanerjee/anc-simulator/internal/simdops"
)

// Gain multiplies the sum of its inputs by a scalar. A gain of -1 inverts polarity.
type Gain struct {
	*node

	// Gain is the linear multiplier.
	Gain *Param
}

// NewGain creates a unity gain stage.
func (c *Context) NewGain() (*Gain, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil, ErrClosed
	}
	g := &Gain{
		Gain: newParam(c, "gain", 1, -math.MaxFloat32, math.MaxFloat32),
	}
	g.node = newNode(c, KindGain, g, true, true)
	return g, nil
}

func (g *Gain) process(in, out []float64, frame int64) {
	simdops.For[float64]().Scale(out, in, g.Gain.advance(frame))
}
