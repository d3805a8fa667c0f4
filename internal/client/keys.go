package client

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/evymii/ard-arena/internal/input"
)

// keysOf lists the input keys a terminal key event stands for. Modifiers
// count as separate held keys; an upper-case letter implies shift.
func keysOf(ev *tcell.EventKey) []input.Key {
	return keysFor(ev.Key(), ev.Rune(), ev.Modifiers())
}

func keysFor(key tcell.Key, r rune, mod tcell.ModMask) []input.Key {
	var out []input.Key
	if mod&tcell.ModShift != 0 {
		out = append(out, input.KeyShift)
	}
	if mod&tcell.ModCtrl != 0 {
		out = append(out, input.KeyCtrl)
	}
	switch key {
	case tcell.KeyLeft:
		out = append(out, input.KeyLeft)
	case tcell.KeyRight:
		out = append(out, input.KeyRight)
	case tcell.KeyUp:
		out = append(out, input.KeyUp)
	case tcell.KeyDown:
		out = append(out, input.KeyDown)
	case tcell.KeyRune:
		if unicode.IsUpper(r) {
			if mod&tcell.ModShift == 0 {
				out = append(out, input.KeyShift)
			}
			r = unicode.ToLower(r)
		}
		out = append(out, input.Key(string(r)))
	}
	return out
}

func isQuit(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
}
