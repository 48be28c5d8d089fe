package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKaiserWindow(t *testing.T) {
	assert.Nil(t, KaiserWindow(0, 5))
	assert.Equal(t, []float64{1}, KaiserWindow(1, 5))

	w := KaiserWindow(65, KaiserBeta(60))
	assert.InDelta(t, 1, w[32], 1e-12, "centre")
	for i := range w {
		assert.InDelta(t, w[i], w[len(w)-1-i], 1e-12, "symmetric at %d", i)
	}
	for i := 1; i <= 32; i++ {
		assert.GreaterOrEqual(t, w[i], w[i-1], "rises towards the centre")
	}
	assert.Less(t, w[0], 0.05, "tapered edges")

	for _, v := range KaiserWindow(16, 0) {
		assert.InDelta(t, 1, v, 1e-12, "beta 0 is rectangular")
	}
}

func TestKaiserBeta(t *testing.T) {
	assert.InDelta(t, 0.1102*(60-8.7), KaiserBeta(60), 1e-12)
	assert.InDelta(t, 0.5842*math.Pow(9, 0.4)+0.07886*9, KaiserBeta(30), 1e-12)
	assert.Zero(t, KaiserBeta(20))
}

func TestBesselI0(t *testing.T) {
	// Reference values from Abramowitz and Stegun table 9.8.
	tests := []struct{ x, want float64 }{
		{0, 1},
		{1, 1.2660658777520082},
		{2, 2.2795853023360673},
		{5, 27.239871823604442},
		{10, 2815.716628466254},
	}
	for _, tt := range tests {
		assert.InEpsilon(t, tt.want, besselI0(tt.x), 1e-12, "x=%v", tt.x)
		assert.Equal(t, besselI0(tt.x), besselI0(-tt.x))
	}
}
