//go:build !headless

package ui

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"

	"github.com/priyangsubanerjee/anc-simulator/internal/controls"
)

func TestActionForKey(t *testing.T) {
	tests := []struct {
		key  ebiten.Key
		want controls.Action
	}{
		{ebiten.KeySpace, controls.ActionToggle},
		{ebiten.KeyArrowRight, controls.ActionFrequencyUp},
		{ebiten.KeyArrowLeft, controls.ActionFrequencyDown},
		{ebiten.KeyArrowUp, controls.ActionPhaseUp},
		{ebiten.KeyArrowDown, controls.ActionPhaseDown},
		{ebiten.KeyI, controls.ActionInvert},
		{ebiten.KeyEscape, controls.ActionQuit},
	}
	for _, tt := range tests {
		got, ok := actionForKey(tt.key)
		assert.True(t, ok, tt.key.String())
		assert.Equal(t, tt.want, got, tt.key.String())
	}

	_, ok := actionForKey(ebiten.KeyQ)
	assert.False(t, ok)
}

func TestKeyBindingsAllMapped(t *testing.T) {
	seen := map[controls.Action]bool{}
	for _, key := range keyBindings {
		a, ok := actionForKey(key)
		assert.True(t, ok, key.String())
		seen[a] = true
	}
	assert.Len(t, seen, len(keyBindings))
}
