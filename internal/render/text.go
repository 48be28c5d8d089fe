package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"
)

const (
	glyphPoint = '•'
	glyphRule  = '─'
)

type cell struct {
	r   rune
	clr color.RGBA
}

// Text is a character-grid surface for terminals. One cell is one unit of
// width and height; later strokes overwrite earlier ones.
type Text struct {
	cols, rows int
	cells      []cell
}

// NewText creates a cols×rows grid.
func NewText(cols, rows int) *Text {
	cols, rows = max(cols, 1), max(rows, 1)
	return &Text{cols: cols, rows: rows, cells: make([]cell, cols*rows)}
}

// Resize changes the grid dimensions and clears it.
func (t *Text) Resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	if cols == t.cols && rows == t.rows {
		return
	}
	t.cols, t.rows = cols, rows
	t.cells = make([]cell, cols*rows)
}

// Size implements Surface.
func (t *Text) Size() (w, h float32) {
	return float32(t.cols), float32(t.rows)
}

// Clear implements Surface.
func (t *Text) Clear() {
	clear(t.cells)
}

// StrokeLine implements Surface. Horizontal lines spanning several cells are
// drawn as rules, everything else as points. Width is ignored.
func (t *Text) StrokeLine(x0, y0, x1, y1, _ float32, clr color.Color) {
	glyph := glyphPoint
	if y0 == y1 && math.Abs(float64(x1-x0)) > 1 {
		glyph = glyphRule
	}
	c := color.RGBAModel.Convert(clr).(color.RGBA)

	steps := int(math.Ceil(math.Max(math.Abs(float64(x1-x0)), math.Abs(float64(y1-y0)))))
	for i := 0; i <= steps; i++ {
		f := float32(0)
		if steps > 0 {
			f = float32(i) / float32(steps)
		}
		t.plot(x0+(x1-x0)*f, y0+(y1-y0)*f, glyph, c)
	}
}

func (t *Text) plot(x, y float32, r rune, c color.RGBA) {
	col := int(math.Floor(float64(x)))
	row := int(math.Floor(float64(y)))
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return
	}
	t.cells[row*t.cols+col] = cell{r: r, clr: c}
}

// At returns the glyph at col, row, or a space for an empty cell.
func (t *Text) At(col, row int) rune {
	if col < 0 || col >= t.cols || row < 0 || row >= t.rows {
		return ' '
	}
	if r := t.cells[row*t.cols+col].r; r != 0 {
		return r
	}
	return ' '
}

// WriteTo writes the grid with 24-bit ANSI colours, one line per row.
// Rows end in CRLF so the output is correct in raw terminal mode.
func (t *Text) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	for row := range t.rows {
		var last color.RGBA
		for col := range t.cols {
			c := t.cells[row*t.cols+col]
			if c.r == 0 {
				b.WriteByte(' ')
				continue
			}
			if c.clr != last {
				fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", c.clr.R, c.clr.G, c.clr.B)
				last = c.clr
			}
			b.WriteRune(c.r)
		}
		b.WriteString("\x1b[0m\r\n")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

var _ Surface = (*Text)(nil)
