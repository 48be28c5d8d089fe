package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	ancsim "github.com/priyangsubanerjee/anc-simulator"
	"github.com/priyangsubanerjee/anc-simulator/internal/device"
	"github.com/priyangsubanerjee/anc-simulator/internal/export"
)

// Subcommands.
const (
	cmdGUI    = "gui"
	cmdTUI    = "tui"
	cmdRender = "render"
	cmdScript = "script"
)

// Defaults for the render subcommand.
const (
	defaultRenderDuration = 2 * time.Second
	defaultRenderOutput   = "ancsim.wav"
	snapshotWidth         = 800
	snapshotHeight        = 300
)

// Environment variables consulted when the matching flag is not given.
const (
	envOutput    = "ANCSIM_OUTPUT"
	envDebugAddr = "ANCSIM_DEBUG_ADDR"
	envLogLevel  = "ANCSIM_LOG_LEVEL"
	envLogFile   = "ANCSIM_LOG_FILE"
)

// options is the parsed command line.
type options struct {
	command string
	sim     ancsim.Config

	debugAddr string
	logLevel  string
	logFile   string

	// render
	duration   time.Duration
	wavPath    string
	pngPath    string
	exportRate int
	bits       int

	// script
	scriptPath string
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseArgs parses args (without the program name). The first argument
// selects the subcommand when it does not start with a dash.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	opts := options{command: cmdGUI, sim: ancsim.DefaultConfig()}
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		opts.command, args = args[0], args[1:]
	}

	switch opts.command {
	case cmdGUI, cmdTUI, cmdRender, cmdScript:
	default:
		return opts, fmt.Errorf("unknown command %q (want gui, tui, render or script)", opts.command)
	}

	fs := flag.NewFlagSet("ancsim "+opts.command, flag.ContinueOnError)
	fs.SetOutput(stderr)

	defaultOutput := getEnv(envOutput, device.KindAuto)
	if opts.command == cmdRender {
		defaultOutput = device.KindNone
	}

	fs.Float64Var(&opts.sim.SampleRate, "rate", ancsim.DefaultSampleRate, "engine sample rate in Hz")
	fs.IntVar(&opts.sim.FFTSize, "fft", ancsim.DefaultFFTSize, "samples per trace (power of two)")
	fs.Float64Var(&opts.sim.Frequency, "freq", ancsim.DefaultFrequency, "shared tone frequency in Hz [50, 1000]")
	fs.Float64Var(&opts.sim.Phase, "phase", ancsim.DefaultPhase, "phase delay of the anti-noise path in degrees [0, 360]")
	fs.BoolVar(&opts.sim.Invert, "invert", false, "invert the anti-noise polarity")
	fs.StringVar(&opts.sim.Output, "output", defaultOutput, "audio output: auto, oto, null or none (env "+envOutput+")")
	fs.StringVar(&opts.debugAddr, "debug-addr", getEnv(envDebugAddr, ""), "serve diagnostics on this address, e.g. 127.0.0.1:6060 (env "+envDebugAddr+")")
	fs.StringVar(&opts.logLevel, "log-level", getEnv(envLogLevel, "info"), "log level: debug, info, warn or error (env "+envLogLevel+")")
	fs.StringVar(&opts.logFile, "log-file", getEnv(envLogFile, ""), "write logs to this file instead of stderr (env "+envLogFile+")")

	if opts.command == cmdRender {
		fs.DurationVar(&opts.duration, "duration", defaultRenderDuration, "length of audio to render")
		fs.StringVar(&opts.wavPath, "o", defaultRenderOutput, "WAV output path")
		fs.StringVar(&opts.pngPath, "png", "", "also write the last frame of the traces as PNG")
		fs.IntVar(&opts.exportRate, "export-rate", 0, "WAV sample rate; 0 keeps the engine rate")
		fs.IntVar(&opts.bits, "bits", export.Bits16, "WAV bit depth: 16, 24 or 32")
	}

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.command == cmdScript {
		if fs.NArg() != 1 {
			return opts, errors.New("script: want exactly one script path")
		}
		opts.scriptPath = fs.Arg(0)
	} else if fs.NArg() > 0 {
		return opts, fmt.Errorf("%s: unexpected arguments %v", opts.command, fs.Args())
	}

	if err := opts.sim.Validate(); err != nil {
		return opts, err
	}
	if opts.command == cmdRender {
		if opts.sim.Output != device.KindNone {
			return opts, fmt.Errorf("render: output must be %q, got %q", device.KindNone, opts.sim.Output)
		}
		if err := opts.exportOptions().Validate(); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func (o options) exportOptions() export.Options {
	return export.Options{Duration: o.duration, SampleRate: o.exportRate, BitDepth: o.bits}
}

// newLogger builds a production logger, or a development one at debug level.
// The terminal front end owns the screen, so it logs nowhere unless a log
// file is set.
func newLogger(o options) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(o.logLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if o.command == cmdTUI && o.logFile == "" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if o.logFile != "" {
		cfg.OutputPaths = []string{o.logFile}
		cfg.ErrorOutputPaths = []string{o.logFile}
	}
	return cfg.Build()
}
