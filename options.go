package ancsim

import (
	"github.com/priyangsubanerjee/anc-simulator/internal/device"
	"github.com/priyangsubanerjee/anc-simulator/internal/metrics"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
	"go.uber.org/zap"
)

// OutputOpener opens the audio output that pulls samples from src.
type OutputOpener func(src device.Source, sampleRate int) (device.Output, error)

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records into m instead of a private set of instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Simulator) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithOutput replaces the output selected by Config.Output.
func WithOutput(open OutputOpener) Option {
	return func(s *Simulator) {
		s.openOutput = open
	}
}

// WithSurface enables the render loop, painting every frame onto surface.
func WithSurface(surface render.Surface) Option {
	return func(s *Simulator) {
		s.surface = surface
	}
}

// WithScheduler sets the frame scheduler driving the render loop. The default
// is a render.FrameQueue the host flushes through Simulator.Scheduler.
func WithScheduler(sched render.Scheduler) Option {
	return func(s *Simulator) {
		if sched != nil {
			s.sched = sched
		}
	}
}
