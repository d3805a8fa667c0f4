// Package input turns held keys into move intents.
package input

import (
	"sort"
	"time"

	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
)

// Key names a physical key: a lower-case character, or one of the named keys
// below.
type Key string

const (
	KeyLeft  Key = "left"
	KeyRight Key = "right"
	KeyUp    Key = "up"
	KeyDown  Key = "down"
	KeyShift Key = "shift"
	KeyCtrl  Key = "ctrl"
)

// Keymap binds the nine controls of one player.
type Keymap struct {
	Right, Left, Up, Down Key
	Block                 Key
	HighPunch, LowPunch   Key
	LowKick, HighKick     Key
}

var (
	// PlayerOne is the left player in two-player local games.
	PlayerOne = Keymap{
		Right: "j", Left: "g", Up: "y", Down: "h",
		Block:     KeyShift,
		HighPunch: "a", LowPunch: "s", LowKick: "d", HighKick: "f",
	}
	// PlayerTwo is the right player in two-player local games.
	PlayerTwo = Keymap{
		Right: KeyRight, Left: KeyLeft, Up: KeyUp, Down: KeyDown,
		Block:     KeyCtrl,
		HighPunch: "p", LowPunch: "[", LowKick: "]", HighKick: `\`,
	}
	// Single is used when one local player is at the keyboard.
	Single = Keymap{
		Right: KeyRight, Left: KeyLeft, Up: KeyUp, Down: KeyDown,
		Block:     KeyShift,
		HighPunch: "a", LowPunch: "s", LowKick: "d", HighKick: "f",
	}
)

// Set is the collection of keys currently held, across every player.
type Set map[Key]bool

// Resolve picks the move a player's keys ask for given the fighter's state.
// It reports false when the keys ask for nothing.
func Resolve(pressed Set, k Keymap, f match.FighterState) (moves.Kind, bool) {
	current := f.Move

	if current == moves.Squat && !pressed[k.Down] {
		return moves.StandUp, true
	}
	if current == moves.Block && !pressed[k.Block] {
		return moves.Stand, true
	}
	if len(pressed) == 0 {
		return moves.Stand, true
	}

	jumpAttack := func(kick bool) (moves.Kind, bool) {
		switch current {
		case moves.ForwardJump:
			if kick {
				return moves.ForwardJumpKick, true
			}
			return moves.ForwardJumpPunch, true
		case moves.BackwardJump:
			if kick {
				return moves.BackwardJumpKick, true
			}
			return moves.BackwardJumpPunch, true
		}
		return 0, false
	}

	switch {
	case pressed[k.Block]:
		return moves.Block, true
	case pressed[k.Left]:
		if pressed[k.Up] {
			return moves.BackwardJump, true
		}
		if pressed[k.HighKick] && f.Orientation == moves.Left {
			return moves.SpinKick, true
		}
		return moves.WalkBackward, true
	case pressed[k.Right]:
		if pressed[k.Up] {
			return moves.ForwardJump, true
		}
		if pressed[k.HighKick] && f.Orientation == moves.Right {
			return moves.SpinKick, true
		}
		return moves.Walk, true
	case pressed[k.Down]:
		switch {
		case pressed[k.HighPunch]:
			return moves.Uppercut, true
		case pressed[k.LowKick]:
			return moves.SquatLowKick, true
		case pressed[k.HighKick]:
			return moves.SquatHighKick, true
		case pressed[k.LowPunch]:
			return moves.SquatLowPunch, true
		}
		return moves.Squat, true
	case pressed[k.HighKick]:
		if kind, ok := jumpAttack(true); ok {
			return kind, true
		}
		return moves.HighKick, true
	case pressed[k.Up]:
		return moves.Jump, true
	case pressed[k.LowKick]:
		if kind, ok := jumpAttack(true); ok {
			return kind, true
		}
		return moves.LowKick, true
	case pressed[k.LowPunch]:
		if kind, ok := jumpAttack(false); ok {
			return kind, true
		}
		return moves.LowPunch, true
	case pressed[k.HighPunch]:
		if kind, ok := jumpAttack(false); ok {
			return kind, true
		}
		return moves.HighPunch, true
	}
	return 0, false
}

// DefaultHold is how long a key counts as held after its last press event.
const DefaultHold = 250 * time.Millisecond

// Tracker derives held keys from press events alone, for terminals that
// never report key releases. A key stays held while its auto-repeat keeps
// arriving and is released Hold after the last one.
type Tracker struct {
	Hold time.Duration

	seen map[Key]time.Time
}

func NewTracker(hold time.Duration) *Tracker {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Tracker{Hold: hold, seen: make(map[Key]time.Time)}
}

// Press records key at now. It reports whether key was not already held.
func (t *Tracker) Press(key Key, now time.Time) bool {
	_, held := t.seen[key]
	t.seen[key] = now
	return !held
}

// Release drops key immediately.
func (t *Tracker) Release(key Key) bool {
	_, held := t.seen[key]
	delete(t.seen, key)
	return held
}

// Expire releases every key not pressed within Hold of now and returns them
// in sorted order.
func (t *Tracker) Expire(now time.Time) []Key {
	var released []Key
	for key, at := range t.seen {
		if now.Sub(at) >= t.Hold {
			delete(t.seen, key)
			released = append(released, key)
		}
	}
	sort.Slice(released, func(i, j int) bool { return released[i] < released[j] })
	return released
}

// Pressed copies the held keys.
func (t *Tracker) Pressed() Set {
	out := make(Set, len(t.seen))
	for key := range t.seen {
		out[key] = true
	}
	return out
}
