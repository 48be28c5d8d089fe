package ancsim

import (
	"fmt"
	"math"
)

// Params are the user-controlled values shared by both sources.
type Params struct {
	Frequency float64 `json:"frequency"` // Hz, shared by both sources
	Phase     float64 `json:"phase"`     // degrees of delay applied to source 2
	Invert    bool    `json:"invert"`    // polarity inversion of source 2
}

// Delay returns the delay in seconds implied by p.
func (p Params) Delay() float64 {
	d, err := DelayFor(p.Frequency, p.Phase)
	if err != nil {
		return 0
	}
	return d
}

// DelayFor returns the delay in seconds that shifts a tone of hz by deg
// degrees: (deg/360) * (1/hz).
func DelayFor(hz, deg float64) (float64, error) {
	if !finite(hz) || hz <= 0 {
		return 0, fmt.Errorf("%w: frequency %v must be positive", ErrInvalidParameter, hz)
	}
	if !finite(deg) {
		return 0, fmt.Errorf("%w: phase %v", ErrInvalidParameter, deg)
	}
	return (deg / degreesPerCycle) * (1 / hz), nil
}

// ClampFrequency limits hz to [MinFrequency, MaxFrequency].
func ClampFrequency(hz float64) float64 {
	return min(max(hz, MinFrequency), MaxFrequency)
}

// ClampPhase limits deg to [MinPhase, MaxPhase].
func ClampPhase(deg float64) float64 {
	return min(max(deg, MinPhase), MaxPhase)
}

// PolarityGain returns the polarity stage gain: -1 when inverted, else 1.
func PolarityGain(invert bool) float64 {
	if invert {
		return invertedGain
	}
	return unityGain
}

// ExpectedSumAmplitude returns the peak of the summed signal for two
// unit-amplitude tones when the second is delayed by deg degrees and
// optionally inverted: 2|cos(φ/2)|, or 2|sin(φ/2)| with inversion.
func ExpectedSumAmplitude(deg float64, invert bool) float64 {
	half := deg * math.Pi / degreesPerCycle
	if invert {
		return 2 * math.Abs(math.Sin(half))
	}
	return 2 * math.Abs(math.Cos(half))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
