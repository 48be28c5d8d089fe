// Package analysis measures the signals captured by the simulator taps:
// level, dominant frequency and how deeply the summed signal cancels.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/priyangsubanerjee/anc-simulator/internal/simdops"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// FloorDB is the cancellation depth reported when the sum is exactly silent.
const FloorDB = -120.0

// Stats summarizes one captured window.
type Stats struct {
	RMS       float64 `json:"rms"`
	Peak      float64 `json:"peak"`
	Frequency float64 `json:"frequency"`
}

// Report is a measurement of the three taps taken at the same instant.
type Report struct {
	Reference Stats `json:"reference"`
	AntiNoise Stats `json:"antiNoise"`
	Sum       Stats `json:"sum"`

	// CancellationDB is the sum level relative to the reference level.
	// Negative values mean the sum is quieter than the reference.
	CancellationDB float64 `json:"cancellationDb"`
}

// Measure computes a Report from three equally sized windows.
func Measure(reference, antiNoise, sum []float64, sampleRate float64) Report {
	return Report{
		Reference:      Summarize(reference, sampleRate),
		AntiNoise:      Summarize(antiNoise, sampleRate),
		Sum:            Summarize(sum, sampleRate),
		CancellationDB: CancellationDB(reference, sum),
	}
}

// Summarize computes Stats for x.
func Summarize(x []float64, sampleRate float64) Stats {
	return Stats{
		RMS:       RMS(x),
		Peak:      Peak(x),
		Frequency: DominantFrequency(x, sampleRate),
	}
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(simdops.Energy(x) / float64(len(x)))
}

// Peak returns the largest absolute sample value in x.
func Peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		p = max(p, math.Abs(v))
	}
	return p
}

// DominantFrequency returns the frequency in Hz of the strongest non-DC
// component of x, refined by parabolic interpolation between bins. It returns
// 0 for windows shorter than four samples or without any energy.
func DominantFrequency(x []float64, sampleRate float64) float64 {
	n := len(x)
	if n < 4 || sampleRate <= 0 {
		return 0
	}

	// Remove DC so an offset never wins over the tone, then taper the edges
	// so leakage from a tone between bins stays below the neighbouring peak.
	centered := make([]float64, n)
	mean := simdops.Mean(x)
	for i, v := range x {
		centered[i] = v - mean
	}
	floats.Mul(centered, KaiserWindow(n, KaiserBeta(spectrumAttenuation)))

	coeffs := fourier.NewFFT(n).Coefficients(nil, centered)
	mags := make([]float64, len(coeffs))
	for k := 1; k < len(coeffs); k++ {
		mags[k] = cmplx.Abs(coeffs[k])
	}
	k := floats.MaxIdx(mags)
	if mags[k] == 0 {
		return 0
	}

	bin := float64(k)
	if k > 1 && k < len(mags)-1 {
		a, b, c := mags[k-1], mags[k], mags[k+1]
		if d := a - 2*b + c; d != 0 {
			bin += 0.5 * (a - c) / d
		}
	}
	return bin * sampleRate / float64(n)
}

// CancellationDB returns 20*log10(rms(sum)/rms(reference)). A silent reference
// yields 0; a silent sum yields FloorDB.
func CancellationDB(reference, sum []float64) float64 {
	ref := RMS(reference)
	if ref == 0 {
		return 0
	}
	s := RMS(sum)
	if s == 0 {
		return FloorDB
	}
	return max(20*math.Log10(s/ref), FloorDB)
}

// Spectrum summarizes a magnitude spectrum in decibels.
type Spectrum struct {
	BinHz  float64 `json:"binHz"`
	PeakHz float64 `json:"peakHz"`
	PeakDB float64 `json:"peakDb"`
	MeanDB float64 `json:"meanDb"`
}

// SummarizeSpectrum finds the strongest bin of a decibel spectrum whose bins
// are binHz apart. Bin 0 is DC and never wins unless it is the only bin.
func SummarizeSpectrum(bins []float32, binHz float64) Spectrum {
	sp := Spectrum{BinHz: binHz}
	if len(bins) == 0 {
		return sp
	}
	peak := 0
	if len(bins) > 1 {
		peak = 1
		for k := 2; k < len(bins); k++ {
			if bins[k] > bins[peak] {
				peak = k
			}
		}
	}
	sp.PeakHz = float64(peak) * binHz
	sp.PeakDB = float64(bins[peak])
	sp.MeanDB = float64(simdops.Mean(bins))
	return sp
}
