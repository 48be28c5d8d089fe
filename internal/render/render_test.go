package render

import (
	"bytes"
	"context"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Test doubles
// =============================================================================

type stroke struct {
	x0, y0, x1, y1, width float32
	clr                   color.Color
}

// spySurface records every call made to it.
type spySurface struct {
	mu      sync.Mutex
	w, h    float32
	clears  int
	strokes []stroke
}

func (s *spySurface) Size() (w, h float32) { return s.w, s.h }

func (s *spySurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	s.strokes = s.strokes[:0]
}

func (s *spySurface) StrokeLine(x0, y0, x1, y1, width float32, clr color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.strokes = append(s.strokes, stroke{x0, y0, x1, y1, width, clr})
}

func (s *spySurface) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

type fixedTap []float32

func (f fixedTap) FFTSize() int { return len(f) }

func (f fixedTap) FloatTimeDomainData(dst []float32) int { return copy(dst, f) }

// =============================================================================
// FrameQueue Tests
// =============================================================================

func TestFrameQueue_RunsOnceInOrder(t *testing.T) {
	q := NewFrameQueue()
	var got []int
	q.RequestFrame(func() { got = append(got, 1) })
	q.RequestFrame(func() { got = append(got, 2) })

	assert.Equal(t, 2, q.Flush())
	assert.Equal(t, []int{1, 2}, got)
	assert.Zero(t, q.Flush(), "callbacks are one-shot")
	assert.Zero(t, q.Pending())
}

func TestFrameQueue_RequestDuringFlushDefers(t *testing.T) {
	q := NewFrameQueue()
	calls := 0
	var again func()
	again = func() {
		calls++
		q.RequestFrame(again)
	}
	q.RequestFrame(again)

	q.Flush()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, q.Pending())
	q.Flush()
	assert.Equal(t, 2, calls)
}

func TestFrameQueue_Cancel(t *testing.T) {
	q := NewFrameQueue()
	ran := false
	id := q.RequestFrame(func() { ran = true })
	q.CancelFrame(id)
	q.CancelFrame(id + 100)

	assert.Zero(t, q.Flush())
	assert.False(t, ran)
}

func TestFrameQueue_CancelLaterCallbackDuringFlush(t *testing.T) {
	q := NewFrameQueue()
	var second FrameID
	ran := false
	q.RequestFrame(func() { q.CancelFrame(second) })
	second = q.RequestFrame(func() { ran = true })

	assert.Equal(t, 1, q.Flush())
	assert.False(t, ran)
}

func TestTicker_FlushesUntilCancelled(t *testing.T) {
	tk := NewTicker(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	tk.RequestFrame(func() { close(done) })

	errc := make(chan error, 1)
	go func() { errc <- tk.Run(ctx) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker never flushed")
	}
	cancel()
	require.NoError(t, <-errc)
}

func TestTicker_AfterFlush(t *testing.T) {
	tk := NewTicker(time.Millisecond)
	drawn := make(chan int, 64)
	tk.AfterFlush(func(n int) {
		select {
		case drawn <- n:
		default:
		}
	})
	tk.RequestFrame(func() {})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- tk.Run(ctx) }()

	select {
	case n := <-drawn:
		assert.Equal(t, 1, n, "first flush runs the pending callback")
	case <-time.After(5 * time.Second):
		t.Fatal("after-flush hook never ran")
	}
	cancel()
	require.NoError(t, <-errc)
}

// =============================================================================
// Loop Tests
// =============================================================================

func TestLoop_RepeatsUntilCancelled(t *testing.T) {
	q := NewFrameQueue()
	draws := 0
	l := NewLoop(q, func() { draws++ })

	l.Start()
	l.Start()
	assert.Equal(t, 1, q.Pending(), "double start schedules once")

	for range 3 {
		q.Flush()
	}
	assert.Equal(t, 3, draws)

	l.Cancel()
	assert.False(t, l.Active())
	assert.Zero(t, q.Pending())
	for range 3 {
		q.Flush()
	}
	assert.Equal(t, 3, draws, "no draw after Cancel")

	l.Cancel()
}

func TestLoop_CancelInsideFlushBatch(t *testing.T) {
	// A callback queued before the loop's frame cancels the loop in the same flush.
	q := NewFrameQueue()
	draws := 0
	var l *Loop
	q.RequestFrame(func() { l.Cancel() })
	l = NewLoop(q, func() { draws++ })
	l.Start()

	q.Flush()
	assert.Zero(t, draws)
}

func TestLoop_CancelFromAnotherGoroutine(t *testing.T) {
	tk := NewTicker(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = tk.Run(ctx) }()

	var mu sync.Mutex
	draws := 0
	l := NewLoop(tk, func() {
		mu.Lock()
		draws++
		mu.Unlock()
	})
	l.Start()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return draws >= 3
	}, 5*time.Second, time.Millisecond)

	l.Cancel()
	mu.Lock()
	after := draws
	mu.Unlock()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, after, draws)
}

// =============================================================================
// Renderer Tests
// =============================================================================

func TestRenderer_DrawOrderAndGeometry(t *testing.T) {
	s := &spySurface{w: 400, h: 200}
	r := NewRenderer(s)

	ref := fixedTap{1, 0, -1, 0}
	anti := fixedTap{-1, 0, 1, 0}
	sum := fixedTap{0, 0, 0, 0}
	r.Draw(Taps{Reference: ref, AntiNoise: anti, Sum: sum})

	require.Equal(t, 1, s.Clears())
	// One midline plus three segments per four-sample trace.
	require.Len(t, s.strokes, 1+3*3)

	mid := s.strokes[0]
	assert.Equal(t, stroke{0, 100, 400, 100, midlineWidth, ColorMidline}, mid)

	for i, want := range []color.Color{ColorSum, ColorAntiNoise, ColorReference} {
		for j := range 3 {
			st := s.strokes[1+i*3+j]
			assert.Equal(t, want, st.clr, "trace %d segment %d", i, j)
			assert.InDelta(t, DefaultLineWidth, st.width, 0)
		}
	}

	// Reference: x = i/N*W, y = mid - s*(mid - margin).
	first := s.strokes[7]
	assert.InDelta(t, 0, first.x0, 1e-6)
	assert.InDelta(t, 100-94, first.y0, 1e-6)
	assert.InDelta(t, 100, first.x1, 1e-6)
	assert.InDelta(t, 100, first.y1, 1e-6)
	last := s.strokes[9]
	assert.InDelta(t, 300, last.x1, 1e-6)
}

func TestRenderer_MissingTap(t *testing.T) {
	s := &spySurface{w: 10, h: 10}
	r := NewRenderer(s)
	r.Draw(Taps{Reference: fixedTap{0, 1}})
	assert.Len(t, s.strokes, 2, "midline plus the one reference segment")
}

// =============================================================================
// Surface Tests
// =============================================================================

func TestRaster_StrokeAndEncode(t *testing.T) {
	r := NewRaster(40, 20)
	assert.Equal(t, ColorBackground, r.Image().RGBAAt(5, 5))

	r.StrokeLine(0, 10, 40, 10, 3, ColorAntiNoise)
	r.StrokeLine(20, 0, 20, 20, 3, ColorReference)
	img := r.Image()
	assert.Equal(t, ColorAntiNoise, img.RGBAAt(5, 10))
	assert.Equal(t, ColorReference, img.RGBAAt(20, 3))
	assert.Equal(t, ColorBackground, img.RGBAAt(5, 2))

	var buf bytes.Buffer
	require.NoError(t, r.EncodePNG(&buf))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, decoded.Bounds().Dx())

	r.Clear()
	assert.Equal(t, ColorBackground, r.Image().RGBAAt(5, 10))
}

func TestText_MidlineAndPoints(t *testing.T) {
	s := NewText(8, 5)
	r := NewRenderer(s)
	r.Draw(Taps{Reference: fixedTap{0, 0, 0, 0, 0, 0, 0, 0}})

	// A flat reference trace overwrites the rule on row 2 with points.
	assert.Equal(t, glyphPoint, s.At(3, 2))
	assert.Equal(t, ' ', s.At(3, 0))
	assert.Equal(t, ' ', s.At(-1, 0))

	s.Clear()
	s.StrokeLine(0, 1.5, 8, 1.5, 1, ColorMidline)
	assert.Equal(t, glyphRule, s.At(0, 1))
	assert.Equal(t, glyphRule, s.At(7, 1))

	var buf bytes.Buffer
	_, err := s.WriteTo(&buf)
	require.NoError(t, err)
	out := buf.String()
	assert.Equal(t, 5, strings.Count(out, "\r\n"))
	assert.Contains(t, out, "\x1b[38;2;238;238;238m")
}

func TestText_Resize(t *testing.T) {
	s := NewText(0, 0)
	w, h := s.Size()
	assert.Equal(t, float32(1), w)
	assert.Equal(t, float32(1), h)

	s.Resize(20, 4)
	w, h = s.Size()
	assert.Equal(t, float32(20), w)
	assert.Equal(t, float32(4), h)
}
