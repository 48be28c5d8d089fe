package controls

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
	"github.com/priyangsubanerjee/anc-simulator/internal/device"
)

func newSimulator(t *testing.T) *ancsim.Simulator {
	t.Helper()
	cfg := ancsim.DefaultConfig()
	cfg.Output = device.KindNone
	sim, err := ancsim.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sim.Close() })
	return sim
}

func TestApply(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		fine   bool
		want   ancsim.Params
	}{
		{"frequency up", ActionFrequencyUp, false, ancsim.Params{Frequency: 450, Phase: 110}},
		{"frequency down fine", ActionFrequencyDown, true, ancsim.Params{Frequency: 439, Phase: 110}},
		{"phase up", ActionPhaseUp, false, ancsim.Params{Frequency: 440, Phase: 115}},
		{"phase down fine", ActionPhaseDown, true, ancsim.Params{Frequency: 440, Phase: 109}},
		{"invert", ActionInvert, false, ancsim.Params{Frequency: 440, Phase: 110, Invert: true}},
		{"none", ActionNone, false, ancsim.Params{Frequency: 440, Phase: 110}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newSimulator(t)
			require.NoError(t, Apply(context.Background(), sim, tt.action, tt.fine))
			assert.Equal(t, tt.want, sim.Params())
		})
	}
}

func TestApply_ClampsAtRangeEdges(t *testing.T) {
	sim := newSimulator(t)
	_, err := sim.SetFrequency(ancsim.MaxFrequency)
	require.NoError(t, err)
	_, err = sim.SetPhase(ancsim.MinPhase)
	require.NoError(t, err)

	require.NoError(t, Apply(context.Background(), sim, ActionFrequencyUp, false))
	require.NoError(t, Apply(context.Background(), sim, ActionPhaseDown, false))
	assert.Equal(t, ancsim.MaxFrequency, sim.Params().Frequency)
	assert.Equal(t, ancsim.MinPhase, sim.Params().Phase)
}

func TestApply_ToggleAndQuit(t *testing.T) {
	sim := newSimulator(t)
	ctx := context.Background()

	require.NoError(t, Apply(ctx, sim, ActionToggle, false))
	assert.True(t, sim.Running())
	require.NoError(t, Apply(ctx, sim, ActionToggle, false))
	assert.False(t, sim.Running())

	assert.ErrorIs(t, Apply(ctx, sim, ActionQuit, false), ErrQuit)
	assert.Error(t, Apply(ctx, sim, Action(99), false))
}

func TestStatusLines(t *testing.T) {
	st := Status{
		Params:    ancsim.Params{Frequency: 440, Phase: 180},
		Available: true,
	}
	lines := st.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "stopped   440 Hz   phase 180°   invert off", lines[0])
	assert.Equal(t, "delay 1.136 ms   sum amplitude expected 0.00", lines[1])

	st.Running = true
	st.Params.Invert = true
	st.Available = false
	st.Measured = &analysis.Report{Sum: analysis.Stats{Peak: 1.999}, CancellationDB: 6.02}
	lines = st.Lines()
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "running")
	assert.Contains(t, lines[0], "invert on")
	assert.Contains(t, lines[1], "expected 2.00")
	assert.Equal(t, "measured 2.00   cancellation 6.0 dB", lines[2])
	assert.Equal(t, "audio unavailable", lines[3])
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "phase-up", ActionPhaseUp.String())
	assert.Equal(t, "Action(42)", Action(42).String())
}
