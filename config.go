package ancsim

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/priyangsubanerjee/anc-simulator/internal/device"
	"github.com/priyangsubanerjee/anc-simulator/internal/engine"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid configuration parameters.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidParameter indicates a non-finite frequency or phase.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrEngineUnavailable indicates that no audio engine or output could be
	// opened. The simulator stays usable but cannot start.
	ErrEngineUnavailable = errors.New("audio engine unavailable")

	// ErrNotRunning indicates an operation that needs a running session.
	ErrNotRunning = errors.New("simulator not running")

	// ErrClosed indicates the simulator has been closed.
	ErrClosed = errors.New("simulator closed")
)

// Config holds simulator configuration.
type Config struct {
	// SampleRate is the engine sample rate in Hz.
	SampleRate float64

	// FFTSize is the tap window length in samples. It sets how many samples
	// each trace shows. Must be a power of two.
	FFTSize int

	// Frequency, Phase and Invert are the initial parameter values.
	// Frequency and phase are clamped to their ranges.
	Frequency float64
	Phase     float64
	Invert    bool

	// Output selects the audio output: "auto", "oto", "null" or "none".
	// With "none" the caller drives the engine via Engine().Render.
	Output string
}

// DefaultConfig returns the configuration the demo starts with.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		FFTSize:    DefaultFFTSize,
		Frequency:  DefaultFrequency,
		Phase:      DefaultPhase,
		Output:     device.KindAuto,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if math.IsNaN(c.SampleRate) || c.SampleRate < engine.MinSampleRate || c.SampleRate > engine.MaxSampleRate {
		return fmt.Errorf("%w: sample rate %v outside [%v, %v]",
			ErrInvalidConfig, c.SampleRate, engine.MinSampleRate, engine.MaxSampleRate)
	}
	if c.FFTSize < engine.MinFFTSize || c.FFTSize > engine.MaxFFTSize || bits.OnesCount(uint(c.FFTSize)) != 1 {
		return fmt.Errorf("%w: fft size %d must be a power of two in [%d, %d]",
			ErrInvalidConfig, c.FFTSize, engine.MinFFTSize, engine.MaxFFTSize)
	}
	if !finite(c.Frequency) || !finite(c.Phase) {
		return fmt.Errorf("%w: frequency %v and phase %v must be finite", ErrInvalidConfig, c.Frequency, c.Phase)
	}
	kinds := []string{device.KindAuto, device.KindOto, device.KindNull, device.KindNone}
	if !slices.Contains(kinds, c.Output) {
		return fmt.Errorf("%w: output %q not one of %v", ErrInvalidConfig, c.Output, kinds)
	}
	return nil
}
