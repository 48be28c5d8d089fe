package engine

// Rendering constants.
const (
	// RenderQuantum is the number of frames rendered per graph pull.
	// Parameter events are applied on quantum boundaries.
	RenderQuantum = 128

	// DefaultSampleRate is the engine sample rate used when none is configured.
	DefaultSampleRate = 48000.0

	// MinSampleRate and MaxSampleRate bound the accepted context sample rate.
	MinSampleRate = 8000.0
	MaxSampleRate = 192000.0
)

// Node constants
const (
	// MaxDelayLimit is the largest delay line a context will allocate, in seconds.
	MaxDelayLimit = 180.0

	// delayGuardFrames pads the delay line so interpolation never reads the write slot.
	delayGuardFrames = 2

	// DefaultOscillatorFrequency is the initial frequency of a new oscillator in Hz.
	DefaultOscillatorFrequency = 440.0
)

// Analyser constants
const (
	DefaultFFTSize = 2048
	MinFFTSize     = 32
	MaxFFTSize     = 32768

	// minDecibels is the floor reported by FloatFrequencyData for silent bins.
	minDecibels = -200.0

	// Blackman window coefficients.
	blackmanAlpha = 0.16
	blackmanA0    = (1 - blackmanAlpha) / 2
	blackmanA1    = 0.5
	blackmanA2    = blackmanAlpha / 2
)

// Node kinds reported by Node.Kind.
const (
	KindOscillator  = "oscillator"
	KindDelay       = "delay"
	KindGain        = "gain"
	KindAnalyser    = "analyser"
	KindDestination = "destination"
)
