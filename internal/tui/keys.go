package tui

import (
	"bytes"

	"github.com/priyangsubanerjee/anc-simulator/internal/controls"
)

const (
	keyEsc   = 0x1b
	keyCtrlC = 0x03
)

// keyPress is one decoded key.
type keyPress struct {
	action controls.Action
	fine   bool
}

var letterActions = map[byte]controls.Action{
	' ': controls.ActionToggle,
	'l': controls.ActionFrequencyUp,
	'h': controls.ActionFrequencyDown,
	'k': controls.ActionPhaseUp,
	'j': controls.ActionPhaseDown,
	'i': controls.ActionInvert,
	'I': controls.ActionInvert,
	'q': controls.ActionQuit,
	'Q': controls.ActionQuit,
}

// Upper-case vi keys select the fine steps.
var fineLetterActions = map[byte]controls.Action{
	'L': controls.ActionFrequencyUp,
	'H': controls.ActionFrequencyDown,
	'K': controls.ActionPhaseUp,
	'J': controls.ActionPhaseDown,
}

var arrowActions = map[byte]controls.Action{
	'A': controls.ActionPhaseUp,
	'B': controls.ActionPhaseDown,
	'C': controls.ActionFrequencyUp,
	'D': controls.ActionFrequencyDown,
}

// parseKeys decodes one read from a raw-mode terminal. Arrow keys arrive as
// ESC [ X, shifted arrows as ESC [ 1 ; 2 X. A lone ESC quits.
func parseKeys(buf []byte) []keyPress {
	var out []keyPress
	for len(buf) > 0 {
		b := buf[0]
		switch {
		case b == keyCtrlC:
			out = append(out, keyPress{action: controls.ActionQuit})
			buf = buf[1:]
		case b == keyEsc:
			kp, n := parseEscape(buf)
			if kp.action != controls.ActionNone {
				out = append(out, kp)
			}
			buf = buf[n:]
		default:
			if a, ok := letterActions[b]; ok {
				out = append(out, keyPress{action: a})
			} else if a, ok := fineLetterActions[b]; ok {
				out = append(out, keyPress{action: a, fine: true})
			}
			buf = buf[1:]
		}
	}
	return out
}

// parseEscape decodes the sequence at the start of buf and returns how many
// bytes it used.
func parseEscape(buf []byte) (keyPress, int) {
	if len(buf) == 1 || buf[1] != '[' {
		return keyPress{action: controls.ActionQuit}, 1
	}
	if len(buf) >= 3 {
		if a, ok := arrowActions[buf[2]]; ok {
			return keyPress{action: a}, 3
		}
	}
	if shifted := []byte("[1;2"); len(buf) >= 6 && bytes.Equal(buf[1:5], shifted) {
		if a, ok := arrowActions[buf[5]]; ok {
			return keyPress{action: a, fine: true}, 6
		}
	}
	// Unknown CSI sequence: skip to its final byte.
	for i := 2; i < len(buf); i++ {
		if buf[i] >= 0x40 && buf[i] <= 0x7e {
			return keyPress{}, i + 1
		}
	}
	return keyPress{}, len(buf)
}
