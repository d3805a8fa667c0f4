package fighter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evymii/ard-arena/internal/arena"
	"github.com/evymii/ard-arena/internal/moves"
	"github.com/evymii/ard-arena/internal/sim"
)

type recordingObserver struct {
	attacks []float64
	defeats int
}

func (o *recordingObserver) Attack(_ *Fighter, damage float64) { o.attacks = append(o.attacks, damage) }
func (o *recordingObserver) Defeated(*Fighter)                 { o.defeats++ }

type sizedSource struct {
	calls atomic.Int64
	width float64
	fail  moves.Kind
}

func (s *sizedSource) Frame(_ context.Context, name string, o moves.Orientation, kind moves.Kind, step int) (Frame, error) {
	s.calls.Add(1)
	if kind == s.fail {
		return Frame{}, errors.New("missing artwork")
	}
	return Frame{Ref: FrameRef(name, o, kind, step), Width: s.width, Height: 60}, nil
}

func newStanding(t *testing.T) (*Fighter, *sim.Clock, *recordingObserver) {
	t.Helper()
	clock := sim.NewClock()
	f, err := New("subzero", moves.Left, clock)
	if err != nil {
		t.Fatalf("new fighter: %v", err)
	}
	obs := &recordingObserver{}
	f.SetObserver(obs)
	f.SetMove(moves.Stand, 0)
	return f, clock, obs
}

func TestNewValidatesCharacter(t *testing.T) {
	f, err := New("  SubZero ", moves.Left, sim.NewClock())
	if err != nil {
		t.Fatalf("expected case-insensitive name, got %v", err)
	}
	if f.Name() != "subzero" {
		t.Fatalf("expected canonical name, got %q", f.Name())
	}
	if _, err := New("scorpion", moves.Left, sim.NewClock()); !errors.Is(err, ErrUnknownCharacter) {
		t.Fatalf("expected ErrUnknownCharacter, got %v", err)
	}
}

func TestMoveBeforeSetPanics(t *testing.T) {
	f, _ := New("kano", moves.Right, sim.NewClock())
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when querying a move before one is set")
		}
	}()
	f.Move()
}

func TestSetMoveSameKindKeepsStep(t *testing.T) {
	f, clock, _ := newStanding(t)
	clock.Advance(160 * time.Millisecond)
	step := f.Move().Step()
	if step == 0 {
		t.Fatalf("expected stand to have cycled, still at step 0")
	}
	f.SetMove(moves.Stand, 0)
	if f.Move().Step() != step {
		t.Fatalf("expected step %d to survive a repeated stand, got %d", step, f.Move().Step())
	}
}

func TestLockRejectsAllButWin(t *testing.T) {
	f, _, _ := newStanding(t)
	f.SetMove(moves.HighKick, 0)
	if !f.Locked() {
		t.Fatalf("expected attack to lock")
	}
	f.SetMove(moves.Walk, 0)
	if f.Move().Kind() != moves.HighKick {
		t.Fatalf("expected locked fighter to ignore walk, got %s", f.Move().Kind())
	}
	f.SetMove(moves.Win, 0)
	if f.Move().Kind() != moves.Win {
		t.Fatalf("expected win to override the lock, got %s", f.Move().Kind())
	}
}

func TestAttackHitFrameReachesObserver(t *testing.T) {
	f, clock, obs := newStanding(t)
	f.SetMove(moves.HighKick, 0)
	clock.Advance(time.Second)
	if len(obs.attacks) != 1 || obs.attacks[0] != 10 {
		t.Fatalf("expected one attack of 10, got %v", obs.attacks)
	}
	if f.Move().Kind() != moves.Stand || f.Locked() {
		t.Fatalf("expected return to an unlocked stand, got %s locked=%v", f.Move().Kind(), f.Locked())
	}
}

func TestEndureAttackReactions(t *testing.T) {
	cases := []struct {
		name   string
		stance moves.Kind
		attack moves.Kind
		want   moves.Kind
		life   float64
	}{
		{"standing", moves.Stand, moves.HighPunch, moves.Endure, 92},
		{"uppercut knocks down", moves.Stand, moves.Uppercut, moves.KnockDown, 87},
		{"spin kick knocks down", moves.Walk, moves.SpinKick, moves.KnockDown, 87},
		{"crouched", moves.Squat, moves.LowKick, moves.SquatEndure, 94},
	}
	damage := map[moves.Kind]float64{
		moves.HighPunch: 8,
		moves.Uppercut:  13,
		moves.SpinKick:  13,
		moves.LowKick:   6,
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f, _, _ := newStanding(t)
			f.SetMove(tc.stance, 0)
			life := f.EndureAttack(damage[tc.attack], tc.attack)
			if life != tc.life {
				t.Fatalf("expected life %.0f, got %.0f", tc.life, life)
			}
			if f.Move().Kind() != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, f.Move().Kind())
			}
		})
	}
}

func TestBlockScalesDamageAndKeepsStance(t *testing.T) {
	f, clock, _ := newStanding(t)
	f.SetMove(moves.Block, 0)
	clock.Advance(200 * time.Millisecond)
	life := f.EndureAttack(10, moves.HighKick)
	if life != 98 {
		t.Fatalf("expected blocked kick to cost 2, life now %.1f", life)
	}
	if f.Move().Kind() != moves.Block {
		t.Fatalf("expected block to hold, got %s", f.Move().Kind())
	}
}

func TestLifeStaysInBounds(t *testing.T) {
	f, _, obs := newStanding(t)
	f.SetLife(150)
	if f.Life() != MaxLife {
		t.Fatalf("expected life clamped to %.0f, got %.0f", MaxLife, f.Life())
	}
	f.SetLife(-5)
	if f.Life() != 0 || f.Defeated() || obs.defeats != 0 {
		t.Fatalf("expected remote life to clamp without defeat, life=%.0f defeated=%v", f.Life(), f.Defeated())
	}

	g, _, _ := newStanding(t)
	g.SetMove(moves.Block, 0)
	if life := g.EndureAttack(1000, moves.HighKick); life != 0 {
		t.Fatalf("expected blocked overkill to clamp at 0, got %.0f", life)
	}
}

func TestDefeatFiresOnce(t *testing.T) {
	f, clock, obs := newStanding(t)
	f.SetLife(10)
	f.EndureAttack(10, moves.HighKick)
	if obs.defeats != 1 || !f.Defeated() {
		t.Fatalf("expected a single defeat notice, got %d", obs.defeats)
	}
	if f.Move().Kind() != moves.Fall {
		t.Fatalf("expected fall, got %s", f.Move().Kind())
	}
	clock.Advance(2 * time.Second)
	f.EndureAttack(5, moves.LowPunch)
	if obs.defeats != 1 {
		t.Fatalf("expected defeat to stay single, got %d", obs.defeats)
	}
}

func TestJumpAttackTakesOverLateInJump(t *testing.T) {
	f, clock, _ := newStanding(t)
	f.SetMove(moves.ForwardJump, 0)
	if f.BaseHeight() != BaseHeight/2 {
		t.Fatalf("expected halved height in flight, got %.0f", f.BaseHeight())
	}

	f.SetMove(moves.ForwardJumpKick, 0)
	if f.Move().Kind() != moves.ForwardJump {
		t.Fatalf("expected early jump attack to be rejected, got %s", f.Move().Kind())
	}

	clock.Advance(240 * time.Millisecond)
	f.SetMove(moves.ForwardJumpKick, 0)
	if f.Move().Kind() != moves.ForwardJumpKick {
		t.Fatalf("expected jump kick to take over, got %s", f.Move().Kind())
	}
	if f.Move().Total() != 4 {
		t.Fatalf("expected remaining budget of 4 ticks, got %d", f.Move().Total())
	}
	if f.BaseHeight() != BaseHeight {
		t.Fatalf("expected height restored when the jump stopped, got %.0f", f.BaseHeight())
	}
}

func TestInitPreloadsEveryFrame(t *testing.T) {
	f, _ := New("kano", moves.Left, sim.NewClock())
	src := &sizedSource{width: 42, fail: moves.Kind(moves.KindCount)}
	if err := f.Init(context.Background(), src); err != nil {
		t.Fatalf("init: %v", err)
	}
	if got := int(src.calls.Load()); got != FrameCount() {
		t.Fatalf("expected %d frame requests, got %d", FrameCount(), got)
	}
	f.SetMove(moves.Stand, 0)
	if f.VisibleWidth() != 42 {
		t.Fatalf("expected visible width from frame, got %.0f", f.VisibleWidth())
	}
	if f.Frame().Ref != "fighters/kano/left/stand/0.png" {
		t.Fatalf("unexpected frame ref %q", f.Frame().Ref)
	}
}

func TestInitFailsOnMissingFrame(t *testing.T) {
	f, _ := New("kano", moves.Left, sim.NewClock())
	src := &sizedSource{width: 30, fail: moves.Uppercut}
	if err := f.Init(context.Background(), src); err == nil {
		t.Fatalf("expected missing frame to fail init")
	}
}

func TestSetXCommitsLaneResolution(t *testing.T) {
	clock := sim.NewClock()
	a, _ := New("subzero", moves.Left, clock)
	b, _ := New("kano", moves.Right, clock)
	lane := arena.NewLane(600, 400)
	lane.Attach(a, b)
	a.AttachLane(lane)
	b.AttachLane(lane)

	b.SetX(85)
	a.SetX(60)
	if a.X() != 60 || b.X() != 95 {
		t.Fatalf("expected push to 60/95, got %.0f/%.0f", a.X(), b.X())
	}
	b.SetX(940)
	if b.X() != 570 {
		t.Fatalf("expected clamp to 570, got %.0f", b.X())
	}
	if a.Orientation() != moves.Left || b.Orientation() != moves.Right {
		t.Fatalf("expected left/right facings, got %s/%s", a.Orientation(), b.Orientation())
	}
}
