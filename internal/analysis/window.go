package analysis

import "math"

// spectrumAttenuation is the sidelobe level in dB of the window applied
// before peak picking.
const spectrumAttenuation = 60.0

// KaiserWindow returns a symmetric Kaiser window of length n, peaking at 1 in
// the centre. Larger beta trades main-lobe width for lower sidelobes.
func KaiserWindow(n int, beta float64) []float64 {
	if n < 1 {
		return nil
	}
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	half := float64(n-1) / 2
	norm := besselI0(beta)
	for i := range w {
		x := (float64(i) - half) / half
		w[i] = besselI0(beta*math.Sqrt(1-x*x)) / norm
	}
	return w
}

// KaiserBeta returns the window parameter for a sidelobe attenuation in dB
// (Kaiser and Schafer).
func KaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > 50:
		return 0.1102 * (attenuation - 8.7)
	case attenuation >= 21:
		d := attenuation - 21
		return 0.5842*math.Pow(d, 0.4) + 0.07886*d
	default:
		return 0
	}
}

// besselI0 is the modified Bessel function of the first kind, order zero,
// summed from its power series until terms stop contributing.
func besselI0(x float64) float64 {
	q := x * x / 4
	sum, term := 1.0, 1.0
	for k := 1.0; k < 500; k++ {
		term *= q / (k * k)
		sum += term
		if term < sum*1e-17 {
			break
		}
	}
	return sum
}
