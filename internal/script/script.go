// Package script runs Lua lesson scripts that drive the simulator controls.
//
// Scripts see these globals in addition to the base, table, string and math
// libraries:
//
//	start()              start the simulator
//	stop()               stop the simulator
//	frequency([hz])      set the shared frequency; returns the applied value
//	phase([degrees])     set the phase delay; returns the applied value
//	invert([bool])       set polarity inversion; returns the current setting
//	sleep(seconds)       wait, letting the audio run
//	measure()            table with rms levels, frequency and cancellation_db
//	log(...)             write a line to the lesson log
//
// Called without an argument, frequency, phase and invert only return the
// current value.
package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/analysis"
)

// maxSleep bounds a single sleep() call.
const maxSleep = 10 * time.Minute

// Controller is the part of the simulator a script can drive.
type Controller interface {
	Start(ctx context.Context) error
	Stop()
	Params() ancsim.Params
	SetFrequency(hz float64) (float64, error)
	SetPhase(deg float64) (float64, error)
	SetInvert(invert bool) error
	Measure() (analysis.Report, error)
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Runner executes scripts against a Controller.
type Runner struct {
	ctrl  Controller
	log   *zap.Logger
	sleep Sleeper
	lines func(string)
}

// Option configures a Runner.
type Option func(*Runner)

// WithSleeper replaces the wall-clock sleep, for example to render an
// offline engine forward instead of waiting.
func WithSleeper(s Sleeper) Option {
	return func(r *Runner) { r.sleep = s }
}

// WithOutput receives every line written by log().
func WithOutput(fn func(line string)) Option {
	return func(r *Runner) { r.lines = fn }
}

// New creates a runner.
func New(ctrl Controller, logger *zap.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{ctrl: ctrl, log: logger, sleep: wallSleep}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunString executes src. name labels the chunk in error messages.
func (r *Runner) RunString(ctx context.Context, name, src string) error {
	return r.run(ctx, name, func(L *lua.LState) error {
		fn, err := L.Load(strings.NewReader(src), name)
		if err != nil {
			return err
		}
		L.Push(fn)
		return L.PCall(0, lua.MultRet, nil)
	})
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

func (r *Runner) run(ctx context.Context, name string, exec func(*lua.LState) error) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openLibs(L)
	r.register(ctx, L)
	L.SetContext(ctx)

	r.log.Debug("running lesson script", zap.String("script", name))
	if err := exec(L); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

func openLibs(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.LoadLibName, lua.OpenPackage},
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
}

func (r *Runner) register(ctx context.Context, L *lua.LState) {
	fns := map[string]lua.LGFunction{
		"start": func(L *lua.LState) int {
			if err := r.ctrl.Start(ctx); err != nil {
				L.RaiseError("start: %v", err)
			}
			return 0
		},
		"stop": func(*lua.LState) int {
			r.ctrl.Stop()
			return 0
		},
		"frequency": func(L *lua.LState) int {
			v := r.ctrl.Params().Frequency
			if L.GetTop() > 0 {
				applied, err := r.ctrl.SetFrequency(float64(L.CheckNumber(1)))
				if err != nil {
					L.ArgError(1, err.Error())
				}
				v = applied
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"phase": func(L *lua.LState) int {
			v := r.ctrl.Params().Phase
			if L.GetTop() > 0 {
				applied, err := r.ctrl.SetPhase(float64(L.CheckNumber(1)))
				if err != nil {
					L.ArgError(1, err.Error())
				}
				v = applied
			}
			L.Push(lua.LNumber(v))
			return 1
		},
		"invert": func(L *lua.LState) int {
			if L.GetTop() > 0 {
				if err := r.ctrl.SetInvert(L.CheckBool(1)); err != nil {
					L.RaiseError("invert: %v", err)
				}
			}
			L.Push(lua.LBool(r.ctrl.Params().Invert))
			return 1
		},
		"sleep": func(L *lua.LState) int {
			secs := float64(L.CheckNumber(1))
			if secs < 0 || secs > maxSleep.Seconds() {
				L.ArgError(1, fmt.Sprintf("sleep must be within [0, %v] seconds", maxSleep.Seconds()))
			}
			if err := r.sleep(ctx, time.Duration(secs*float64(time.Second))); err != nil {
				L.RaiseError("sleep: %v", err)
			}
			return 0
		},
		"measure": func(L *lua.LState) int {
			rep, err := r.ctrl.Measure()
			if err != nil {
				L.RaiseError("measure: %v", err)
			}
			L.Push(reportTable(L, rep))
			return 1
		},
		"log": func(L *lua.LState) int {
			parts := make([]string, L.GetTop())
			for i := range parts {
				parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
			}
			line := strings.Join(parts, " ")
			r.log.Info("lesson", zap.String("message", line))
			if r.lines != nil {
				r.lines(line)
			}
			return 0
		},
	}
	for name, fn := range fns {
		L.SetGlobal(name, L.NewFunction(fn))
	}
}

func reportTable(L *lua.LState, rep analysis.Report) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("reference_rms", lua.LNumber(rep.Reference.RMS))
	t.RawSetString("anti_noise_rms", lua.LNumber(rep.AntiNoise.RMS))
	t.RawSetString("sum_rms", lua.LNumber(rep.Sum.RMS))
	t.RawSetString("sum_peak", lua.LNumber(rep.Sum.Peak))
	t.RawSetString("frequency", lua.LNumber(rep.Reference.Frequency))
	t.RawSetString("cancellation_db", lua.LNumber(rep.CancellationDB))
	return t
}

func wallSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsCanceled reports whether err came from a cancelled or expired context.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
