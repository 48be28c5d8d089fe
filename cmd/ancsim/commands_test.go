package main

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRunRender(t *testing.T) {
	dir := t.TempDir()
	opts, err := parseArgs([]string{"render",
		"-duration", "250ms",
		"-o", filepath.Join(dir, "out.wav"),
		"-png", filepath.Join(dir, "out.png"),
		"-export-rate", "24000",
	}, os.Stderr)
	require.NoError(t, err)

	require.NoError(t, runRender(context.Background(), opts, zaptest.NewLogger(t)))

	f, err := os.Open(filepath.Join(dir, "out.wav"))
	require.NoError(t, err)
	defer f.Close()
	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(24000), dec.SampleRate)

	p, err := os.Open(filepath.Join(dir, "out.png"))
	require.NoError(t, err)
	defer p.Close()
	img, err := png.Decode(p)
	require.NoError(t, err)
	assert.Equal(t, snapshotWidth, img.Bounds().Dx())
}

func TestRunScript_Offline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lesson.lua")
	src := `
start()
phase(180)
sleep(0.2)
local m = measure()
assert(m.cancellation_db < -40, "expected cancellation, got " .. m.cancellation_db)
stop()
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	opts, err := parseArgs([]string{"script", "-output", "none", path}, os.Stderr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, runScript(ctx, opts, zaptest.NewLogger(t)))
}
