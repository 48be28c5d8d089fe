// Package controls maps front-end key presses to simulator actions and
// formats the status lines shown next to the waveforms. The GUI and the
// terminal front end share it.
package controls

import (
	"context"
	"errors"
	"fmt"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
)

// Step sizes for the adjust actions. The fine steps apply while shift is held.
const (
	FrequencyStep     = 10.0
	FineFrequencyStep = 1.0
	PhaseStep         = 5.0
	FinePhaseStep     = 1.0
)

// ErrQuit is returned by Apply for ActionQuit.
var ErrQuit = errors.New("quit requested")

// Action is a user intent independent of the input device.
type Action int

const (
	ActionNone Action = iota
	ActionToggle
	ActionFrequencyUp
	ActionFrequencyDown
	ActionPhaseUp
	ActionPhaseDown
	ActionInvert
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:          "none",
	ActionToggle:        "toggle",
	ActionFrequencyUp:   "frequency-up",
	ActionFrequencyDown: "frequency-down",
	ActionPhaseUp:       "phase-up",
	ActionPhaseDown:     "phase-down",
	ActionInvert:        "invert",
	ActionQuit:          "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Target is the simulator surface an action can change.
type Target interface {
	Toggle(ctx context.Context) (bool, error)
	Params() ancsim.Params
	SetFrequency(hz float64) (float64, error)
	SetPhase(deg float64) (float64, error)
	SetInvert(invert bool) error
}

// Apply performs a on t. fine selects the small adjust steps.
func Apply(ctx context.Context, t Target, a Action, fine bool) error {
	freqStep, phaseStep := FrequencyStep, PhaseStep
	if fine {
		freqStep, phaseStep = FineFrequencyStep, FinePhaseStep
	}

	var err error
	switch a {
	case ActionNone:
	case ActionToggle:
		_, err = t.Toggle(ctx)
	case ActionFrequencyUp:
		_, err = t.SetFrequency(t.Params().Frequency + freqStep)
	case ActionFrequencyDown:
		_, err = t.SetFrequency(t.Params().Frequency - freqStep)
	case ActionPhaseUp:
		_, err = t.SetPhase(t.Params().Phase + phaseStep)
	case ActionPhaseDown:
		_, err = t.SetPhase(t.Params().Phase - phaseStep)
	case ActionInvert:
		err = t.SetInvert(!t.Params().Invert)
	case ActionQuit:
		return ErrQuit
	default:
		return fmt.Errorf("unknown action %v", a)
	}
	if err != nil {
		return fmt.Errorf("%v: %w", a, err)
	}
	return nil
}

// Status is the state summarized on screen.
type Status struct {
	Params    ancsim.Params
	Running   bool
	Available bool

	// Measured is nil while stopped.
	Measured *analysis.Report
}

// Lines formats s for display, one entry per line.
func (s Status) Lines() []string {
	state := "stopped"
	if s.Running {
		state = "running"
	}
	invert := "off"
	if s.Params.Invert {
		invert = "on"
	}

	lines := []string{
		fmt.Sprintf("%s   %.0f Hz   phase %.0f°   invert %s", state, s.Params.Frequency, s.Params.Phase, invert),
		fmt.Sprintf("delay %.3f ms   sum amplitude expected %.2f", s.Params.Delay()*1e3, ancsim.ExpectedSumAmplitude(s.Params.Phase, s.Params.Invert)),
	}
	if s.Measured != nil {
		lines = append(lines, fmt.Sprintf("measured %.2f   cancellation %.1f dB", s.Measured.Sum.Peak, s.Measured.CancellationDB))
	}
	if !s.Available {
		lines = append(lines, "audio unavailable")
	}
	return lines
}

// Help lists the key bindings.
const Help = "space start/stop  ←/→ frequency  ↑/↓ phase  shift fine  i invert  esc quit"
