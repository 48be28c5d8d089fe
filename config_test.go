package ancsim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 440.0, cfg.Frequency)
	assert.Equal(t, 110.0, cfg.Phase)
	assert.False(t, cfg.Invert)
	assert.Equal(t, 2048, cfg.FFTSize)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"sample rate too low", func(c *Config) { c.SampleRate = 100 }},
		{"sample rate too high", func(c *Config) { c.SampleRate = 1e6 }},
		{"sample rate NaN", func(c *Config) { c.SampleRate = math.NaN() }},
		{"fft not power of two", func(c *Config) { c.FFTSize = 1000 }},
		{"fft too small", func(c *Config) { c.FFTSize = 16 }},
		{"frequency NaN", func(c *Config) { c.Frequency = math.NaN() }},
		{"phase infinite", func(c *Config) { c.Phase = math.Inf(-1) }},
		{"unknown output", func(c *Config) { c.Output = "speaker" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestNew_ClampsInitialParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output = "none"
	cfg.Frequency = 5
	cfg.Phase = 720
	s, err := New(cfg)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, Params{Frequency: MinFrequency, Phase: MaxPhase}, s.Params())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FFTSize = 3
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
