package ancsim

import (
	"context"
	"fmt"
	"sync"

	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
	"github.com/priyangsubanerjee/anc-simulator/internal/device"
	"github.com/priyangsubanerjee/anc-simulator/internal/engine"
	"github.com/priyangsubanerjee/anc-simulator/internal/metrics"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
	"go.uber.org/zap"
)

// Simulator manages the interference graph and its render loop for one view.
//
// The zero value is not usable; create simulators with New.
type Simulator struct {
	mu sync.Mutex

	cfg     Config
	params  Params
	session *Session
	closed  bool

	eng *engine.Context
	out device.Output

	surface render.Surface
	sched   render.Scheduler

	openOutput OutputOpener
	log        *zap.Logger
	metrics    *metrics.Metrics
}

// New creates a simulator. An invalid config is an error; a missing audio
// engine or output is not: the simulator is returned with Available() false
// and Start reports ErrEngineUnavailable.
func New(cfg Config, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg: cfg,
		params: Params{
			Frequency: ClampFrequency(cfg.Frequency),
			Phase:     ClampPhase(cfg.Phase),
			Invert:    cfg.Invert,
		},
		sched: render.NewFrameQueue(),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.openOutput == nil {
		s.openOutput = func(src device.Source, rate int) (device.Output, error) {
			return device.Open(cfg.Output, src, rate, s.log)
		}
	}

	eng, err := engine.NewContext(cfg.SampleRate)
	if err != nil {
		s.log.Warn("audio engine unavailable", zap.Error(err))
		return s, nil
	}
	out, err := s.openOutput(eng, int(cfg.SampleRate))
	if err != nil {
		_ = eng.Close()
		s.log.Warn("audio output unavailable", zap.Error(err))
		return s, nil
	}
	s.eng, s.out = eng, out
	s.log.Debug("simulator ready",
		zap.String("output", out.Name()),
		zap.Float64("sample_rate", cfg.SampleRate),
		zap.Int("fft_size", cfg.FFTSize))
	return s, nil
}

// Available reports whether an audio engine and output were opened.
func (s *Simulator) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng != nil && !s.closed
}

// Start resumes the engine, builds a fresh session and starts the render
// loop. Starting a running simulator is a no-op.
func (s *Simulator) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.session != nil {
		return nil
	}
	if s.eng == nil {
		s.metrics.UnavailableStartsTotal.Inc()
		return ErrEngineUnavailable
	}

	if err := s.out.Resume(); err != nil {
		s.metrics.UnavailableStartsTotal.Inc()
		return fmt.Errorf("%w: resume %s output: %v", ErrEngineUnavailable, s.out.Name(), err)
	}
	defer func() {
		if err != nil {
			s.suspendLocked()
		}
	}()
	if err := s.eng.Resume(ctx); err != nil {
		return fmt.Errorf("resume engine: %w", err)
	}

	sess, err := newSession(s.eng, s.params, s.cfg.FFTSize)
	if err != nil {
		return err
	}
	if s.surface != nil {
		r := render.NewRenderer(s.surface)
		taps := sess.Taps()
		frames := s.metrics.FramesDrawnTotal
		sess.loop = render.NewLoop(s.sched, func() {
			r.Draw(taps)
			frames.Inc()
		})
		sess.loop.Start()
	}
	s.session = sess

	s.metrics.SessionsStartedTotal.Inc()
	s.metrics.ActiveSessions.Set(1)
	s.log.Info("session started",
		zap.Stringer("session", sess.ID),
		zap.Float64("frequency", s.params.Frequency),
		zap.Float64("phase", s.params.Phase),
		zap.Bool("invert", s.params.Invert))
	return nil
}

// Stop cancels the render loop and tears the session down. It is safe to call
// at any time and never fails.
func (s *Simulator) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Simulator) stopLocked() {
	sess := s.session
	if sess == nil {
		return
	}
	s.session = nil

	if sess.loop != nil {
		sess.loop.Cancel()
	}
	sess.teardown(func(kind string, err error) {
		s.metrics.TeardownErrorsTotal.WithLabelValues(kind).Inc()
		s.log.Debug("ignored teardown error", zap.String("node", kind), zap.Error(err))
	})
	s.suspendLocked()

	s.metrics.SessionsStoppedTotal.Inc()
	s.metrics.ActiveSessions.Set(0)
	s.log.Info("session stopped", zap.Stringer("session", sess.ID))
}

// suspendLocked pauses the output and the engine. Failures are logged only.
func (s *Simulator) suspendLocked() {
	if err := s.out.Suspend(); err != nil {
		s.log.Debug("suspend output", zap.Error(err))
	}
	if err := s.eng.Suspend(); err != nil {
		s.log.Debug("suspend engine", zap.Error(err))
	}
}

// Toggle starts a stopped simulator or stops a running one, and reports
// whether it is running afterwards.
func (s *Simulator) Toggle(ctx context.Context) (bool, error) {
	if s.Running() {
		s.Stop()
		return false, nil
	}
	if err := s.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Running reports whether a session exists.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// Params returns the current parameter values.
func (s *Simulator) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// SetFrequency sets the shared frequency, clamped to [MinFrequency,
// MaxFrequency], and returns the applied value. While running both sources
// are retuned and the delay recomputed at the engine's current time.
func (s *Simulator) SetFrequency(hz float64) (float64, error) {
	if !finite(hz) {
		return 0, fmt.Errorf("%w: frequency %v", ErrInvalidParameter, hz)
	}
	hz = ClampFrequency(hz)
	return hz, s.update("frequency", func(p *Params) { p.Frequency = hz })
}

// SetPhase sets the phase delay of source 2 in degrees, clamped to
// [MinPhase, MaxPhase], and returns the applied value.
func (s *Simulator) SetPhase(deg float64) (float64, error) {
	if !finite(deg) {
		return 0, fmt.Errorf("%w: phase %v", ErrInvalidParameter, deg)
	}
	deg = ClampPhase(deg)
	return deg, s.update("phase", func(p *Params) { p.Phase = deg })
}

// SetInvert sets the polarity inversion of source 2.
func (s *Simulator) SetInvert(invert bool) error {
	return s.update("invert", func(p *Params) { p.Invert = invert })
}

func (s *Simulator) update(name string, change func(*Params)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	next := s.params
	change(&next)
	if s.session != nil {
		if err := s.session.apply(next); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	s.params = next

	s.metrics.ParamUpdatesTotal.WithLabelValues(name).Inc()
	s.log.Debug("parameter updated",
		zap.String("param", name),
		zap.Float64("frequency", next.Frequency),
		zap.Float64("phase", next.Phase),
		zap.Bool("invert", next.Invert),
		zap.Float64("delay", next.Delay()))
	return nil
}

// SessionInfo describes the running session, or returns false when stopped.
func (s *Simulator) SessionInfo() (SessionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return SessionInfo{}, false
	}
	return SessionInfo{ID: s.session.ID, StartedAt: s.session.StartedAt, Params: s.params}, true
}

// Taps returns the taps of the running session, or false when stopped.
func (s *Simulator) Taps() (render.Taps, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return render.Taps{}, false
	}
	return s.session.Taps(), true
}

// Measure analyses the current tap windows.
func (s *Simulator) Measure() (analysis.Report, error) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess == nil {
		return analysis.Report{}, ErrNotRunning
	}
	n := s.cfg.FFTSize
	ref, anti, sum := make([]float64, n), make([]float64, n), make([]float64, n)
	err := s.eng.Batch(func(tx *engine.Tx) error {
		tx.TimeDomainData(sess.tapReference, ref)
		tx.TimeDomainData(sess.tapAntiNoise, anti)
		tx.TimeDomainData(sess.tapSum, sum)
		return nil
	})
	if err != nil {
		return analysis.Report{}, fmt.Errorf("read taps: %w", err)
	}

	r := analysis.Measure(ref, anti, sum, s.cfg.SampleRate)
	s.metrics.CancellationDB.Set(r.CancellationDB)
	return r, nil
}

// Spectrum summarizes the magnitude spectrum of the sum tap.
func (s *Simulator) Spectrum() (analysis.Spectrum, error) {
	s.mu.Lock()
	sess := s.session
	s.mu.Unlock()

	if sess == nil {
		return analysis.Spectrum{}, ErrNotRunning
	}
	bins := make([]float32, sess.tapSum.FrequencyBinCount())
	n := sess.tapSum.FloatFrequencyData(bins)
	return analysis.SummarizeSpectrum(bins[:n], s.cfg.SampleRate/float64(s.cfg.FFTSize)), nil
}

// Engine returns the audio engine, or nil when unavailable. With the "none"
// output the caller renders it directly.
func (s *Simulator) Engine() *engine.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng
}

// OutputName returns the name of the audio output, or "" when unavailable.
func (s *Simulator) OutputName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		return ""
	}
	return s.out.Name()
}

// Config returns the configuration the simulator was created with.
func (s *Simulator) Config() Config { return s.cfg }

// Scheduler returns the frame scheduler driving the render loop.
func (s *Simulator) Scheduler() render.Scheduler { return s.sched }

// Metrics returns the simulator's instruments.
func (s *Simulator) Metrics() *metrics.Metrics { return s.metrics }

// Close stops the simulator and releases the engine and output. Closing twice
// is a no-op.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.stopLocked()
	s.closed = true

	if s.eng == nil {
		return nil
	}
	outErr := s.out.Close()
	engErr := s.eng.Close()
	if outErr != nil {
		return fmt.Errorf("close %s output: %w", s.out.Name(), outErr)
	}
	return engErr
}
