package input

import (
	"testing"
	"time"

	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
)

func state(kind moves.Kind, o moves.Orientation) match.FighterState {
	return match.FighterState{Move: kind, Orientation: o}
}

func keys(ks ...Key) Set {
	s := make(Set, len(ks))
	for _, k := range ks {
		s[k] = true
	}
	return s
}

func TestResolve(t *testing.T) {
	k := PlayerOne
	tests := []struct {
		name    string
		pressed Set
		fighter match.FighterState
		want    moves.Kind
		ok      bool
	}{
		{"squat released", keys(), state(moves.Squat, moves.Left), moves.StandUp, true},
		{"squat held", keys(k.Down), state(moves.Squat, moves.Left), moves.Squat, true},
		{"block released", keys(k.Right), state(moves.Block, moves.Left), moves.Stand, true},
		{"nothing held", keys(), state(moves.Walk, moves.Left), moves.Stand, true},
		{"block wins", keys(k.Block, k.Right), state(moves.Stand, moves.Left), moves.Block, true},
		{"back jump", keys(k.Left, k.Up), state(moves.Stand, moves.Left), moves.BackwardJump, true},
		{"forward jump", keys(k.Right, k.Up), state(moves.Stand, moves.Left), moves.ForwardJump, true},
		{"spin kick facing right", keys(k.Left, k.HighKick), state(moves.Stand, moves.Left), moves.SpinKick, true},
		{"no spin kick other facing", keys(k.Left, k.HighKick), state(moves.Stand, moves.Right), moves.WalkBackward, true},
		{"spin kick mirrored", keys(k.Right, k.HighKick), state(moves.Stand, moves.Right), moves.SpinKick, true},
		{"uppercut", keys(k.Down, k.HighPunch), state(moves.Squat, moves.Left), moves.Uppercut, true},
		{"squat low kick", keys(k.Down, k.LowKick), state(moves.Squat, moves.Left), moves.SquatLowKick, true},
		{"squat high kick", keys(k.Down, k.HighKick), state(moves.Squat, moves.Left), moves.SquatHighKick, true},
		{"squat low punch", keys(k.Down, k.LowPunch), state(moves.Squat, moves.Left), moves.SquatLowPunch, true},
		{"high kick", keys(k.HighKick), state(moves.Stand, moves.Left), moves.HighKick, true},
		{"jump kick forward", keys(k.HighKick), state(moves.ForwardJump, moves.Left), moves.ForwardJumpKick, true},
		{"jump kick backward", keys(k.LowKick), state(moves.BackwardJump, moves.Left), moves.BackwardJumpKick, true},
		{"jump punch forward", keys(k.LowPunch), state(moves.ForwardJump, moves.Left), moves.ForwardJumpPunch, true},
		{"jump punch backward", keys(k.HighPunch), state(moves.BackwardJump, moves.Left), moves.BackwardJumpPunch, true},
		{"plain jump", keys(k.Up), state(moves.Stand, moves.Left), moves.Jump, true},
		{"low punch", keys(k.LowPunch), state(moves.Stand, moves.Left), moves.LowPunch, true},
		{"other player's keys", keys(PlayerTwo.Left), state(moves.Walk, moves.Left), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Resolve(tt.pressed, k, tt.fighter)
			if ok != tt.ok || (ok && got != tt.want) {
				t.Fatalf("expected %s/%v, got %s/%v", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestTrackerReleasesAfterHold(t *testing.T) {
	tr := NewTracker(100 * time.Millisecond)
	start := time.Unix(0, 0)

	if !tr.Press("a", start) {
		t.Fatalf("expected first press to change the held set")
	}
	if tr.Press("a", start.Add(60*time.Millisecond)) {
		t.Fatalf("expected repeat press to keep the held set")
	}
	tr.Press("f", start.Add(60*time.Millisecond))

	if released := tr.Expire(start.Add(120 * time.Millisecond)); len(released) != 0 {
		t.Fatalf("expected repeats to keep keys held, released %v", released)
	}
	released := tr.Expire(start.Add(170 * time.Millisecond))
	if len(released) != 2 || released[0] != "a" || released[1] != "f" {
		t.Fatalf("expected a and f released, got %v", released)
	}
	if len(tr.Pressed()) != 0 {
		t.Fatalf("expected no held keys, got %v", tr.Pressed())
	}

	tr.Press(KeyShift, start)
	if !tr.Release(KeyShift) || tr.Release(KeyShift) {
		t.Fatalf("expected release to report only the first drop")
	}
}
