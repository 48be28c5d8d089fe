// Package render paints the reference, anti-noise and summed waveforms onto a
// drawing surface once per display refresh.
package render

import "image/color"

// Trace colours.
var (
	ColorReference  = color.RGBA{R: 0x1d, G: 0x4e, B: 0xd8, A: 0xff}
	ColorAntiNoise  = color.RGBA{R: 0xdc, G: 0x26, B: 0x26, A: 0xff}
	ColorSum        = color.RGBA{R: 0x6b, G: 0x72, B: 0x80, A: 0xff}
	ColorMidline    = color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	ColorBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Layout defaults.
const (
	DefaultMargin    = 6.0
	DefaultLineWidth = 1.5
	midlineWidth     = 1.0
)

// Surface is a 2-D drawing target.
type Surface interface {
	// Size returns the drawable width and height.
	Size() (w, h float32)

	// Clear erases the surface to its background.
	Clear()

	// StrokeLine draws a line segment.
	StrokeLine(x0, y0, x1, y1, width float32, clr color.Color)
}

// Tap is a source of recent time-domain samples.
type Tap interface {
	FFTSize() int
	FloatTimeDomainData(dst []float32) int
}

// Taps groups the three signals drawn each frame.
type Taps struct {
	Reference Tap
	AntiNoise Tap
	Sum       Tap
}

// Renderer draws Taps onto a Surface, reusing its sample buffers between frames.
type Renderer struct {
	surface   Surface
	margin    float32
	lineWidth float32

	ref, anti, sum []float32
}

// NewRenderer creates a renderer with the default margin and line width.
func NewRenderer(s Surface) *Renderer {
	return &Renderer{
		surface:   s,
		margin:    DefaultMargin,
		lineWidth: DefaultLineWidth,
	}
}

// Surface returns the drawing target.
func (r *Renderer) Surface() Surface { return r.surface }

// Draw clears the surface and paints the midline followed by the sum,
// anti-noise and reference traces, so the reference ends up on top.
func (r *Renderer) Draw(t Taps) {
	r.ref = readTap(t.Reference, r.ref)
	r.anti = readTap(t.AntiNoise, r.anti)
	r.sum = readTap(t.Sum, r.sum)

	w, h := r.surface.Size()
	mid := h / 2

	r.surface.Clear()
	r.surface.StrokeLine(0, mid, w, mid, midlineWidth, ColorMidline)
	r.trace(r.sum, ColorSum, w, mid)
	r.trace(r.anti, ColorAntiNoise, w, mid)
	r.trace(r.ref, ColorReference, w, mid)
}

func (r *Renderer) trace(s []float32, clr color.Color, w, mid float32) {
	n := len(s)
	if n < 2 {
		return
	}
	scale := mid - r.margin
	step := w / float32(n)

	px, py := float32(0), mid-s[0]*scale
	for i := 1; i < n; i++ {
		x := float32(i) * step
		y := mid - s[i]*scale
		r.surface.StrokeLine(px, py, x, y, r.lineWidth, clr)
		px, py = x, y
	}
}

func readTap(t Tap, buf []float32) []float32 {
	if t == nil {
		return buf[:0]
	}
	n := t.FFTSize()
	if cap(buf) < n {
		buf = make([]float32, n)
	}
	buf = buf[:n]
	return buf[:t.FloatTimeDomainData(buf)]
}
