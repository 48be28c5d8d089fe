//go:build !headless

package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/priyangsubanerjee/anc-simulator/internal/controls"
)

// keyBindings in the order they are polled each frame.
var keyBindings = []ebiten.Key{
	ebiten.KeySpace,
	ebiten.KeyArrowRight,
	ebiten.KeyArrowLeft,
	ebiten.KeyArrowUp,
	ebiten.KeyArrowDown,
	ebiten.KeyI,
	ebiten.KeyEscape,
}

// actionForKey maps a key to a simulator action.
func actionForKey(key ebiten.Key) (controls.Action, bool) {
	switch key {
	case ebiten.KeySpace:
		return controls.ActionToggle, true
	case ebiten.KeyArrowRight:
		return controls.ActionFrequencyUp, true
	case ebiten.KeyArrowLeft:
		return controls.ActionFrequencyDown, true
	case ebiten.KeyArrowUp:
		return controls.ActionPhaseUp, true
	case ebiten.KeyArrowDown:
		return controls.ActionPhaseDown, true
	case ebiten.KeyI:
		return controls.ActionInvert, true
	case ebiten.KeyEscape:
		return controls.ActionQuit, true
	default:
		return controls.ActionNone, false
	}
}

// repeating reports whether a held adjust key should fire this tick.
// Toggle, invert and quit only fire on the initial press.
func repeating(key ebiten.Key, a controls.Action) bool {
	switch a {
	case controls.ActionToggle, controls.ActionInvert, controls.ActionQuit:
		return inpututil.IsKeyJustPressed(key)
	}
	d := inpututil.KeyPressDuration(key)
	return d == 1 || (d >= repeatDelay && (d-repeatDelay)%repeatInterval == 0)
}

// pressedActions returns the actions triggered this tick and whether shift
// is held.
func pressedActions() ([]controls.Action, bool) {
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	var out []controls.Action
	for _, key := range keyBindings {
		a, ok := actionForKey(key)
		if ok && repeating(key, a) {
			out = append(out, a)
		}
	}
	return out, shift
}
