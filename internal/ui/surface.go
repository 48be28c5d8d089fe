//go:build !headless

package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/priyangsubanerjee/anc-simulator/internal/render"
)

// Surface is a render.Surface backed by an offscreen ebiten image. The
// simulator's render loop draws into it and the game copies it to the
// screen every frame.
type Surface struct {
	img *ebiten.Image
}

var _ render.Surface = (*Surface)(nil)

// NewSurface allocates a w×h offscreen image.
func NewSurface(w, h int) *Surface {
	s := &Surface{img: ebiten.NewImage(w, h)}
	s.Clear()
	return s
}

// Size returns the image size in pixels.
func (s *Surface) Size() (w, h float32) {
	b := s.img.Bounds()
	return float32(b.Dx()), float32(b.Dy())
}

// Clear fills the image with the background colour.
func (s *Surface) Clear() {
	s.img.Fill(render.ColorBackground)
}

// StrokeLine draws an anti-aliased segment.
func (s *Surface) StrokeLine(x0, y0, x1, y1, width float32, clr color.Color) {
	vector.StrokeLine(s.img, x0, y0, x1, y1, width, clr, true)
}

// Image returns the backing image.
func (s *Surface) Image() *ebiten.Image { return s.img }
