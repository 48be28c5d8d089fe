package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
)

// fakeController records calls and clamps like the simulator does.
type fakeController struct {
	params  ancsim.Params
	running bool
	starts  int
	stops   int
}

func (f *fakeController) Start(context.Context) error {
	f.starts++
	f.running = true
	return nil
}

func (f *fakeController) Stop() {
	f.stops++
	f.running = false
}

func (f *fakeController) Params() ancsim.Params { return f.params }

func (f *fakeController) SetFrequency(hz float64) (float64, error) {
	f.params.Frequency = ancsim.ClampFrequency(hz)
	return f.params.Frequency, nil
}

func (f *fakeController) SetPhase(deg float64) (float64, error) {
	f.params.Phase = ancsim.ClampPhase(deg)
	return f.params.Phase, nil
}

func (f *fakeController) SetInvert(v bool) error {
	f.params.Invert = v
	return nil
}

func (f *fakeController) Measure() (analysis.Report, error) {
	if !f.running {
		return analysis.Report{}, ancsim.ErrNotRunning
	}
	return analysis.Report{CancellationDB: -42}, nil
}

func newRunner(t *testing.T, ctrl Controller, opts ...Option) *Runner {
	return New(ctrl, zaptest.NewLogger(t), opts...)
}

func TestRun_DrivesControls(t *testing.T) {
	ctrl := &fakeController{params: ancsim.Params{Frequency: 440, Phase: 110}}
	var slept []time.Duration
	var lines []string
	r := newRunner(t, ctrl,
		WithSleeper(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
		WithOutput(func(l string) { lines = append(lines, l) }))

	src := `
start()
local f = frequency(2000)
phase(180)
invert(true)
sleep(0.5)
local m = measure()
log("applied", f, phase(), invert(), m.cancellation_db)
stop()
`
	require.NoError(t, r.RunString(context.Background(), "lesson", src))

	assert.Equal(t, 1, ctrl.starts)
	assert.Equal(t, 1, ctrl.stops)
	assert.Equal(t, ancsim.Params{Frequency: 1000, Phase: 180, Invert: true}, ctrl.params)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, slept)
	assert.Equal(t, []string{"applied 1000 180 true -42"}, lines)
}

func TestRun_ErrorsCarryScriptName(t *testing.T) {
	r := newRunner(t, &fakeController{})

	err := r.RunString(context.Background(), "broken", "measure()")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "not running")

	err = r.RunString(context.Background(), "syntax", "start(")
	assert.Error(t, err)

	err = r.RunString(context.Background(), "args", "sleep(-1)")
	assert.Error(t, err)
}

func TestRun_CancelledDuringSleep(t *testing.T) {
	r := newRunner(t, &fakeController{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.RunString(ctx, "forever", "while true do sleep(1) end")
	require.Error(t, err)
	assert.True(t, IsCanceled(err), "%v", err)
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.lua")
	require.NoError(t, os.WriteFile(path, []byte("phase(90)\nfrequency(300)\n"), 0o600))

	ctrl := &fakeController{}
	require.NoError(t, newRunner(t, ctrl).RunFile(context.Background(), path))
	assert.Equal(t, ancsim.Params{Frequency: 300, Phase: 90}, ctrl.params)

	assert.Error(t, newRunner(t, ctrl).RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.lua")))
}

func TestRun_StandardLibrariesOnly(t *testing.T) {
	r := newRunner(t, &fakeController{})
	require.NoError(t, r.RunString(context.Background(), "libs", `assert(math.floor(2.5) == 2); assert(string.upper("a") == "A")`))
	assert.Error(t, r.RunString(context.Background(), "os", `os.exit(1)`), "os library is not opened")
}
