package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"
)

// Raster is an in-memory RGBA surface. Consecutive strokes of one colour are
// accumulated into a single path and composited together.
type Raster struct {
	img *image.RGBA
	z   *vector.Rasterizer

	pending bool
	pendClr color.Color
}

// NewRaster creates a w×h raster cleared to the background colour.
func NewRaster(w, h int) *Raster {
	r := &Raster{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		z:   vector.NewRasterizer(w, h),
	}
	r.Clear()
	return r
}

// Size implements Surface.
func (r *Raster) Size() (w, h float32) {
	b := r.img.Bounds()
	return float32(b.Dx()), float32(b.Dy())
}

// Clear implements Surface.
func (r *Raster) Clear() {
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	r.pending = false
	draw.Draw(r.img, b, image.NewUniform(ColorBackground), image.Point{}, draw.Src)
}

// StrokeLine implements Surface. The segment is rasterized as a quad of the
// given width.
func (r *Raster) StrokeLine(x0, y0, x1, y1, width float32, clr color.Color) {
	if r.pending && r.pendClr != clr {
		r.flush()
	}

	dx, dy := x1-x0, y1-y0
	l := float32(math.Hypot(float64(dx), float64(dy)))
	if l == 0 {
		dx, l = 1, 1
	}
	nx, ny := -dy/l*width/2, dx/l*width/2

	r.z.MoveTo(x0+nx, y0+ny)
	r.z.LineTo(x1+nx, y1+ny)
	r.z.LineTo(x1-nx, y1-ny)
	r.z.LineTo(x0-nx, y0-ny)
	r.z.ClosePath()

	r.pending = true
	r.pendClr = clr
}

func (r *Raster) flush() {
	if !r.pending {
		return
	}
	b := r.img.Bounds()
	r.z.Draw(r.img, b, image.NewUniform(r.pendClr), image.Point{})
	r.z.Reset(b.Dx(), b.Dy())
	r.pending = false
}

// Image returns the composited image. The returned image is reused by later
// frames.
func (r *Raster) Image() *image.RGBA {
	r.flush()
	return r.img
}

// EncodePNG writes the current frame as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.Image())
}

var _ Surface = (*Raster)(nil)
