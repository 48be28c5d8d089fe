package ancsim

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/priyangsubanerjee/anc-simulator/internal/engine"
	"github.com/priyangsubanerjee/anc-simulator/internal/render"
)

// Session is the live synthesis graph of one run, built on Start and torn
// down on Stop.
type Session struct {
	// ID identifies the run in logs and diagnostics.
	ID uuid.UUID

	// StartedAt is the engine time in seconds at which both sources started.
	StartedAt float64

	eng *engine.Context

	source1  *engine.Oscillator
	source2  *engine.Oscillator
	delay    *engine.Delay
	polarity *engine.Gain
	sum      *engine.Gain

	tapReference *engine.Analyser
	tapAntiNoise *engine.Analyser
	tapSum       *engine.Analyser

	loop *render.Loop
}

// SessionInfo describes a running session.
type SessionInfo struct {
	ID        uuid.UUID `json:"id"`
	StartedAt float64   `json:"startedAt"`
	Params    Params    `json:"params"`
}

// Edge is a directed connection between two named nodes.
type Edge struct {
	From string
	To   string
}

type namedNode struct {
	name string
	node engine.Node
}

// newSession builds and wires the graph, applies p and starts both sources
// at the engine's current time. On error every node created so far is
// disconnected again.
func newSession(eng *engine.Context, p Params, fftSize int) (_ *Session, err error) {
	s := &Session{ID: uuid.New(), eng: eng}
	defer func() {
		if err != nil {
			s.teardown(nil)
		}
	}()

	if s.source1, err = eng.NewOscillator(); err != nil {
		return nil, fmt.Errorf("create source 1: %w", err)
	}
	if s.source2, err = eng.NewOscillator(); err != nil {
		return nil, fmt.Errorf("create source 2: %w", err)
	}
	if s.delay, err = eng.NewDelay(maxDelaySeconds); err != nil {
		return nil, fmt.Errorf("create delay: %w", err)
	}
	if s.polarity, err = eng.NewGain(); err != nil {
		return nil, fmt.Errorf("create polarity stage: %w", err)
	}
	if s.sum, err = eng.NewGain(); err != nil {
		return nil, fmt.Errorf("create summing stage: %w", err)
	}
	if s.tapReference, err = eng.NewAnalyser(fftSize); err != nil {
		return nil, fmt.Errorf("create reference tap: %w", err)
	}
	if s.tapAntiNoise, err = eng.NewAnalyser(fftSize); err != nil {
		return nil, fmt.Errorf("create anti-noise tap: %w", err)
	}
	if s.tapSum, err = eng.NewAnalyser(fftSize); err != nil {
		return nil, fmt.Errorf("create sum tap: %w", err)
	}

	wiring := []struct {
		from engine.Node
		to   engine.Node
	}{
		{s.source1, s.tapReference},
		{s.source1, s.sum},
		{s.source2, s.delay},
		{s.delay, s.polarity},
		{s.polarity, s.tapAntiNoise},
		{s.polarity, s.sum},
		{s.sum, s.tapSum},
		{s.tapSum, eng.Destination()},
	}
	for _, w := range wiring {
		if err = w.from.Connect(w.to); err != nil {
			return nil, fmt.Errorf("connect %s to %s: %w", w.from.Kind(), w.to.Kind(), err)
		}
	}

	err = eng.Batch(func(tx *engine.Tx) error {
		if err := s.applyTx(tx, p); err != nil {
			return err
		}
		s.StartedAt = tx.Now()
		if err := tx.Start(s.source1); err != nil {
			return err
		}
		return tx.Start(s.source2)
	})
	if err != nil {
		return nil, fmt.Errorf("start sources: %w", err)
	}
	return s, nil
}

// apply pushes p into the graph so every change lands in the same quantum.
func (s *Session) apply(p Params) error {
	return s.eng.Batch(func(tx *engine.Tx) error {
		return s.applyTx(tx, p)
	})
}

func (s *Session) applyTx(tx *engine.Tx, p Params) error {
	delay, err := DelayFor(p.Frequency, p.Phase)
	if err != nil {
		return err
	}
	return errors.Join(
		tx.Set(s.source1.Frequency, p.Frequency),
		tx.Set(s.source2.Frequency, p.Frequency),
		tx.Set(s.delay.DelayTime, delay),
		tx.Set(s.polarity.Gain, PolarityGain(p.Invert)),
	)
}

// teardown stops both sources and disconnects every node. Errors are reported
// to onErr, keyed by node kind, and otherwise ignored.
func (s *Session) teardown(onErr func(kind string, err error)) {
	report := func(kind string, err error) {
		if err != nil && onErr != nil {
			onErr(kind, err)
		}
	}

	now := s.eng.CurrentTime()
	for _, o := range []*engine.Oscillator{s.source1, s.source2} {
		if o != nil {
			report(engine.KindOscillator, o.Stop(now))
		}
	}
	for _, n := range s.nodes() {
		report(n.node.Kind(), n.node.Disconnect())
	}
}

// nodes returns the session's nodes in creation order, skipping any not yet created.
func (s *Session) nodes() []namedNode {
	all := []struct {
		name string
		node engine.Node
		ok   bool
	}{
		{NodeSource1, s.source1, s.source1 != nil},
		{NodeSource2, s.source2, s.source2 != nil},
		{NodeDelay, s.delay, s.delay != nil},
		{NodePolarity, s.polarity, s.polarity != nil},
		{NodeSum, s.sum, s.sum != nil},
		{NodeTapReference, s.tapReference, s.tapReference != nil},
		{NodeTapAntiNoise, s.tapAntiNoise, s.tapAntiNoise != nil},
		{NodeTapSum, s.tapSum, s.tapSum != nil},
	}
	out := make([]namedNode, 0, len(all))
	for _, n := range all {
		if n.ok {
			out = append(out, namedNode{n.name, n.node})
		}
	}
	return out
}

// Topology lists the connections currently present between the session's
// nodes and the destination, in node order.
func (s *Session) Topology() []Edge {
	nodes := append(s.nodes(), namedNode{NodeDestination, s.eng.Destination()})

	var edges []Edge
	for _, from := range nodes {
		for _, to := range nodes {
			if from.node.ConnectedTo(to.node) {
				edges = append(edges, Edge{From: from.name, To: to.name})
			}
		}
	}
	return edges
}

// Isolated reports whether no session node has any connection left.
func (s *Session) Isolated() bool {
	for _, n := range s.nodes() {
		if n.node.NumInputs() != 0 || n.node.NumOutputs() != 0 {
			return false
		}
	}
	return true
}

// Taps returns the three signal taps for drawing.
func (s *Session) Taps() render.Taps {
	return render.Taps{
		Reference: s.tapReference,
		AntiNoise: s.tapAntiNoise,
		Sum:       s.tapSum,
	}
}
