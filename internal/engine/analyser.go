package engine

import (
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Analyser is a non-destructive tap: it passes its input through unchanged and
// keeps the most recent FFTSize samples for inspection.
//
// Analysers are rendered every quantum while connected, even when nothing
// downstream reaches the destination.
type Analyser struct {
	*node

	fftSize int
	win     *window

	scratch []float64
	fft     *fourier.FFT
	coeffs  []complex128
}

// NewAnalyser creates a tap with a window of fftSize samples. fftSize must be
// a power of two in [MinFFTSize, MaxFFTSize].
func (c *Context) NewAnalyser(fftSize int) (*Analyser, error) {
	if fftSize < MinFFTSize || fftSize > MaxFFTSize || bits.OnesCount(uint(fftSize)) != 1 {
		return nil, fmt.Errorf("%w: fft size %d must be a power of two in [%d, %d]",
			ErrInvalidValue, fftSize, MinFFTSize, MaxFFTSize)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateClosed {
		return nil, ErrClosed
	}
	a := &Analyser{
		fftSize: fftSize,
		win:     newWindow(fftSize),
		scratch: make([]float64, fftSize),
	}
	a.node = newNode(c, KindAnalyser, a, true, true)
	c.autoPull[a.node] = struct{}{}
	return a, nil
}

// FFTSize returns the analysis window length in samples.
func (a *Analyser) FFTSize() int { return a.fftSize }

// FrequencyBinCount returns the number of bins written by FloatFrequencyData.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

func (a *Analyser) process(in, out []float64, _ int64) {
	copy(out, in)
	a.win.Write(in)
}

// TimeDomainData copies the window, oldest sample first, into dst and returns
// the number of samples written (at most FFTSize).
func (a *Analyser) TimeDomainData(dst []float64) int {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()
	return a.win.Peek(dst)
}

// FloatTimeDomainData is TimeDomainData for float32 buffers.
func (a *Analyser) FloatTimeDomainData(dst []float32) int {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()

	n := a.win.Peek(a.scratch)
	n = min(n, len(dst))
	for i := range n {
		dst[i] = float32(a.scratch[i])
	}
	return n
}

// FloatFrequencyData writes the Blackman-windowed magnitude spectrum of the
// current window in decibels into dst and returns the number of bins written
// (at most FrequencyBinCount). Silent bins read -200 dB.
func (a *Analyser) FloatFrequencyData(dst []float32) int {
	a.ctx.mu.Lock()
	defer a.ctx.mu.Unlock()

	if a.fft == nil {
		a.fft = fourier.NewFFT(a.fftSize)
	}

	a.win.Peek(a.scratch)
	n := float64(a.fftSize)
	for i := range a.scratch {
		x := float64(i) / n
		w := blackmanA0 - blackmanA1*math.Cos(2*math.Pi*x) + blackmanA2*math.Cos(4*math.Pi*x)
		a.scratch[i] *= w
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.scratch)

	bins := min(len(dst), a.fftSize/2)
	for k := range bins {
		mag := cmplx.Abs(a.coeffs[k]) / n
		db := minDecibels
		if mag > 0 {
			db = max(20*math.Log10(mag), minDecibels)
		}
		dst[k] = float32(db)
	}
	return bins
}
