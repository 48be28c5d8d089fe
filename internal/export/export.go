// Package export renders the simulator offline and writes the summed output
// to a WAV file, optionally converted to another sample rate.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	resampler "github.com/tphakala/go-audio-resampler"
)

// Supported WAV bit depths.
const (
	Bits16 = 16
	Bits24 = 24
	Bits32 = 32
)

// chunkFrames is the number of frames pulled from the engine per Render call.
const chunkFrames = 1024

// wavFormatPCM is the WAVE_FORMAT_PCM format tag.
const wavFormatPCM = 1

var (
	// ErrInvalidOptions is returned for unusable export options.
	ErrInvalidOptions = errors.New("export: invalid options")
)

// Renderer produces mono float32 frames. *engine.Context satisfies it.
type Renderer interface {
	Render(out []float32) int
	SampleRate() float64
}

// Options controls an export.
type Options struct {
	// Duration of audio to render.
	Duration time.Duration

	// SampleRate of the written file. Zero keeps the engine rate.
	SampleRate int

	// BitDepth of the written PCM samples: 16, 24 or 32. Zero means 16.
	BitDepth int
}

// Validate checks the options against the engine rate.
func (o Options) Validate() error {
	if o.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %v", ErrInvalidOptions, o.Duration)
	}
	if o.SampleRate < 0 {
		return fmt.Errorf("%w: sample rate must not be negative, got %d", ErrInvalidOptions, o.SampleRate)
	}
	switch o.BitDepth {
	case 0, Bits16, Bits24, Bits32:
	default:
		return fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidOptions, o.BitDepth)
	}
	return nil
}

// Capture pulls frames for d of engine time. It stops early with ctx.Err()
// when ctx is cancelled.
func Capture(ctx context.Context, r Renderer, d time.Duration) ([]float64, error) {
	frames := int(math.Round(d.Seconds() * r.SampleRate()))
	out := make([]float64, 0, frames)
	buf := make([]float32, chunkFrames)

	for len(out) < frames {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		n := min(chunkFrames, frames-len(out))
		r.Render(buf[:n])
		for _, v := range buf[:n] {
			out = append(out, float64(v))
		}
	}
	return out, nil
}

// Resample converts mono samples between rates. Equal rates return the
// input unchanged.
func Resample(samples []float64, inRate, outRate int) ([]float64, error) {
	if inRate == outRate {
		return samples, nil
	}
	out, err := resampler.ResampleMono(samples, float64(inRate), float64(outRate), resampler.QualityHigh)
	if err != nil {
		return nil, fmt.Errorf("resample %d Hz to %d Hz: %w", inRate, outRate, err)
	}
	return out, nil
}

// WriteWAV encodes mono samples in [-1, 1] as PCM. Samples outside the
// range are clipped.
func WriteWAV(w io.WriteSeeker, samples []float64, sampleRate, bitDepth int) error {
	if bitDepth == 0 {
		bitDepth = Bits16
	}
	scale := fullScale(bitDepth)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(math.Round(max(-1, min(1, s)) * scale))
	}

	enc := wav.NewEncoder(w, sampleRate, bitDepth, 1, wavFormatPCM)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// Render captures opts.Duration of audio from r and writes it to path.
// It returns the number of samples written.
func Render(ctx context.Context, r Renderer, path string, opts Options) (int, error) {
	if err := opts.Validate(); err != nil {
		return 0, err
	}

	samples, err := Capture(ctx, r, opts.Duration)
	if err != nil {
		return 0, err
	}

	inRate := int(r.SampleRate())
	outRate := opts.SampleRate
	if outRate == 0 {
		outRate = inRate
	}
	samples, err = Resample(samples, inRate, outRate)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteWAV(f, samples, outRate, opts.BitDepth); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", path, err)
	}
	return len(samples), nil
}

// fullScale returns the largest positive sample value for a bit depth.
func fullScale(bitDepth int) float64 {
	return float64(int64(1)<<(bitDepth-1) - 1)
}
