package ancsim

import "github.com/priyangsubanerjee/anc-simulator/internal/engine"

// Parameter ranges
const (
	MinFrequency = 50.0   // Hz
	MaxFrequency = 1000.0 // Hz
	MinPhase     = 0.0    // degrees
	MaxPhase     = 360.0  // degrees
)

// Defaults
const (
	DefaultFrequency  = 440.0 // Hz
	DefaultPhase      = 110.0 // degrees, shows partial cancellation on first start
	DefaultSampleRate = engine.DefaultSampleRate
	DefaultFFTSize    = engine.DefaultFFTSize
)

// Graph constants
const (
	// maxDelaySeconds covers a full period at MinFrequency.
	maxDelaySeconds = 1 / MinFrequency

	degreesPerCycle = 360.0
	unityGain       = 1.0
	invertedGain    = -1.0
)

// Node names used in Topology edges.
const (
	NodeSource1      = "source1"
	NodeSource2      = "source2"
	NodeDelay        = "delay"
	NodePolarity     = "polarity"
	NodeSum          = "sum"
	NodeTapReference = "tapReference"
	NodeTapAntiNoise = "tapAntiNoise"
	NodeTapSum       = "tapSum"
	NodeDestination  = "destination"
)
