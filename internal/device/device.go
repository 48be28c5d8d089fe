// Package device connects an audio engine to a sound output: a real device
// through oto, a wall-clock pump that discards samples, or nothing at all.
package device

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrUnavailable indicates that the requested output could not be opened.
var ErrUnavailable = errors.New("audio output unavailable")

// Output kinds accepted by Open.
const (
	KindAuto = "auto"
	KindOto  = "oto"
	KindNull = "null"
	KindNone = "none"
)

// Source produces mono float32 samples on demand.
type Source interface {
	Render(out []float32) int
}

// Output drives a Source.
type Output interface {
	// Name identifies the backend.
	Name() string

	// Resume starts pulling samples. Resuming a running output is a no-op.
	Resume() error

	// Suspend pauses pulling samples.
	Suspend() error

	// Close releases the output. Closing twice is a no-op.
	Close() error
}

// Open creates an Output of the given kind pulling from src at sampleRate.
// KindAuto tries oto and falls back to the null pump with a warning.
func Open(kind string, src Source, sampleRate int, logger *zap.Logger) (Output, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrUnavailable)
	}

	switch kind {
	case KindOto:
		return NewOto(src, sampleRate)
	case KindNull:
		return NewNull(src, sampleRate), nil
	case KindNone, "":
		return Offline{}, nil
	case KindAuto:
		out, err := NewOto(src, sampleRate)
		if err == nil {
			return out, nil
		}
		logger.Warn("audio device unavailable, rendering silently",
			zap.Error(err), zap.Int("sample_rate", sampleRate))
		return NewNull(src, sampleRate), nil
	default:
		return nil, fmt.Errorf("%w: unknown output kind %q", ErrUnavailable, kind)
	}
}

// Offline is an Output that never pulls; the caller renders the engine itself.
type Offline struct{}

// Name implements Output.
func (Offline) Name() string { return KindNone }

// Resume implements Output.
func (Offline) Resume() error { return nil }

// Suspend implements Output.
func (Offline) Suspend() error { return nil }

// Close implements Output.
func (Offline) Close() error { return nil }

var (
	_ Output = Offline{}
	_ Output = (*Null)(nil)
	_ Output = (*Oto)(nil)
)
