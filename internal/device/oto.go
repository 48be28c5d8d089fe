//go:build !headless

package device

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// otoBufferBytes sizes the initial read buffer (1024 mono float32 frames).
const otoBufferBytes = 4096

// oto allows a single context per process.
var shared struct {
	once sync.Once
	ctx  *oto.Context
	rate int
	err  error
}

func otoContext(sampleRate int) (*oto.Context, error) {
	shared.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 1,
			Format:       oto.FormatFloat32LE,
			BufferSize:   0,
		})
		if err != nil {
			shared.err = err
			return
		}
		<-ready
		shared.ctx = ctx
		shared.rate = sampleRate
	})
	if shared.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, shared.err)
	}
	if shared.rate != sampleRate {
		return nil, fmt.Errorf("%w: device already open at %d Hz", ErrUnavailable, shared.rate)
	}
	return shared.ctx, nil
}

// Oto plays a Source on the default sound device.
type Oto struct {
	mu      sync.Mutex
	player  *oto.Player
	playing bool
	closed  bool
}

// NewOto opens the default device as a mono float32 stream at sampleRate.
func NewOto(src Source, sampleRate int) (*Oto, error) {
	ctx, err := otoContext(sampleRate)
	if err != nil {
		return nil, err
	}
	p := ctx.NewPlayer(&otoReader{src: src, buf: make([]float32, otoBufferBytes/4)})
	return &Oto{player: p}, nil
}

// Name implements Output.
func (o *Oto) Name() string { return KindOto }

// Resume implements Output.
func (o *Oto) Resume() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return ErrUnavailable
	}
	if !o.playing {
		o.player.Play()
		o.playing = true
	}
	return nil
}

// Suspend implements Output.
func (o *Oto) Suspend() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.playing {
		o.player.Pause()
		o.playing = false
	}
	return nil
}

// Close implements Output.
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return nil
	}
	o.closed = true
	o.playing = false
	return o.player.Close()
}

// otoReader adapts a Source to the io.Reader pulled by the oto player.
type otoReader struct {
	src Source
	buf []float32
}

func (r *otoReader) Read(p []byte) (int, error) {
	n := len(p) / 4
	if cap(r.buf) < n {
		r.buf = make([]float32, n)
	}
	samples := r.buf[:n]
	r.src.Render(samples)

	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return n * 4, nil
}
