package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/priyangsubanerjee/anc-simulator/internal/controls"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []keyPress
	}{
		{"space toggles", " ", []keyPress{{action: controls.ActionToggle}}},
		{"vi keys", "hjkl", []keyPress{
			{action: controls.ActionFrequencyDown},
			{action: controls.ActionPhaseDown},
			{action: controls.ActionPhaseUp},
			{action: controls.ActionFrequencyUp},
		}},
		{"shifted vi keys are fine", "LJ", []keyPress{
			{action: controls.ActionFrequencyUp, fine: true},
			{action: controls.ActionPhaseDown, fine: true},
		}},
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", []keyPress{
			{action: controls.ActionPhaseUp},
			{action: controls.ActionPhaseDown},
			{action: controls.ActionFrequencyUp},
			{action: controls.ActionFrequencyDown},
		}},
		{"shifted arrow", "\x1b[1;2C", []keyPress{{action: controls.ActionFrequencyUp, fine: true}}},
		{"invert", "iI", []keyPress{{action: controls.ActionInvert}, {action: controls.ActionInvert}}},
		{"lone escape quits", "\x1b", []keyPress{{action: controls.ActionQuit}}},
		{"ctrl-c quits", "\x03", []keyPress{{action: controls.ActionQuit}}},
		{"unknown sequence skipped", "\x1b[5~l", []keyPress{{action: controls.ActionFrequencyUp}}},
		{"other letters ignored", "xyz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseKeys([]byte(tt.in)))
		})
	}
}

func TestStatusBar(t *testing.T) {
	assert.Equal(t, reverseVideo+"ab  "+resetStyle, statusBar("ab", 4))
	assert.Equal(t, reverseVideo+"°°"+resetStyle, statusBar("°°°", 2))
}
