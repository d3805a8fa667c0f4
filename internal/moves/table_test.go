package moves

import (
	"errors"
	"testing"
	"time"

	"github.com/evymii/ard-arena/internal/sim"
)

type handoff struct {
	kind Kind
	step int
}

type fakeActor struct {
	x, y        float64
	locked      bool
	height      float64
	orientation Orientation
	strikes     []float64
	handoffs    []handoff
	frames      []int
}

func newFakeActor() *fakeActor {
	return &fakeActor{x: 100, y: PlayerTop, height: 60}
}

func (a *fakeActor) X() float64                 { return a.x }
func (a *fakeActor) Y() float64                 { return a.y }
func (a *fakeActor) SetX(x float64)             { a.x = x }
func (a *fakeActor) SetY(y float64)             { a.y = y }
func (a *fakeActor) Lock()                      { a.locked = true }
func (a *fakeActor) Unlock()                    { a.locked = false }
func (a *fakeActor) Bottom() float64            { return 400 - (a.height + a.y) }
func (a *fakeActor) BaseHeight() float64        { return a.height }
func (a *fakeActor) SetBaseHeight(h float64)    { a.height = h }
func (a *fakeActor) Orientation() Orientation   { return a.orientation }
func (a *fakeActor) Strike(damage float64)      { a.strikes = append(a.strikes, damage) }
func (a *fakeActor) ShowFrame(_ Kind, step int) { a.frames = append(a.frames, step) }
func (a *fakeActor) SetMove(kind Kind, step int) {
	a.handoffs = append(a.handoffs, handoff{kind: kind, step: step})
}

func start(t *testing.T, kind Kind, a *fakeActor, clock *sim.Clock) *Move {
	t.Helper()
	spec, ok := Lookup(kind)
	if !ok {
		t.Fatalf("expected table entry for %s", kind)
	}
	m := New(spec)
	m.Go(a, clock, 0)
	return m
}

func TestTableIsTotal(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("expected valid table, got %v", err)
	}
	rows := Table()
	if len(rows) != KindCount {
		t.Fatalf("expected %d rows, got %d", KindCount, len(rows))
	}
	for _, kind := range Kinds() {
		if rows[kind].Kind != kind {
			t.Fatalf("row %d holds %s", kind, rows[kind].Kind)
		}
	}
	if _, ok := Lookup(Kind(KindCount)); ok {
		t.Fatalf("expected lookup of undeclared kind to fail")
	}
}

func TestTuningMatchesBalanceSheet(t *testing.T) {
	cases := []struct {
		kind     Kind
		steps    int
		interval time.Duration
		damage   float64
	}{
		{HighKick, 7, 40 * time.Millisecond, 10},
		{LowKick, 6, 40 * time.Millisecond, 6},
		{LowPunch, 5, 40 * time.Millisecond, 5},
		{HighPunch, 5, 40 * time.Millisecond, 8},
		{Uppercut, 5, 60 * time.Millisecond, 13},
		{SpinKick, 8, 60 * time.Millisecond, 13},
		{SquatHighKick, 4, 70 * time.Millisecond, 6},
		{SquatLowPunch, 3, 70 * time.Millisecond, 4},
		{ForwardJumpKick, 3, 80 * time.Millisecond, 10},
		{BackwardJumpPunch, 3, 80 * time.Millisecond, 9},
		{Stand, 9, 80 * time.Millisecond, 0},
		{KnockDown, 10, 80 * time.Millisecond, 0},
		{Win, 10, 100 * time.Millisecond, 0},
		{Jump, 6, 60 * time.Millisecond, 0},
	}
	for _, tc := range cases {
		spec, _ := Lookup(tc.kind)
		if spec.Steps != tc.steps || spec.Interval != tc.interval || spec.Damage != tc.damage {
			t.Fatalf("%s: expected %d steps @ %s dmg %.0f, got %d @ %s dmg %.0f",
				tc.kind, tc.steps, tc.interval, tc.damage, spec.Steps, spec.Interval, spec.Damage)
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds() {
		parsed, err := ParseKind(kind.String())
		if err != nil || parsed != kind {
			t.Fatalf("expected %s to parse back, got %v (%v)", kind, parsed, err)
		}
	}
	if _, err := ParseKind("fireball"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestAttackRegistersSingleHitAndReturns(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	m := start(t, HighKick, a, clock)
	if !a.locked {
		t.Fatalf("expected attack to lock the fighter")
	}

	clock.Advance(time.Second)

	if len(a.strikes) != 1 || a.strikes[0] != 10 {
		t.Fatalf("expected exactly one strike of 10, got %v", a.strikes)
	}
	want := []int{0, 1, 2, 3, 4, 5, 6, 6, 5, 4, 3, 2, 1}
	if len(a.frames) != len(want) {
		t.Fatalf("expected frames %v, got %v", want, a.frames)
	}
	for i := range want {
		if a.frames[i] != want[i] {
			t.Fatalf("expected frames %v, got %v", want, a.frames)
		}
	}
	if len(a.handoffs) != 1 || a.handoffs[0].kind != Stand {
		t.Fatalf("expected a single handoff to stand, got %v", a.handoffs)
	}
	if m.Active() || a.locked {
		t.Fatalf("expected attack stopped and lock released")
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected attack timer cancelled, %d pending", clock.Pending())
	}
}

func TestAttackRestartResetsHitFlag(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	m := start(t, LowPunch, a, clock)
	clock.Advance(time.Second)
	m.Go(a, clock, 0)
	clock.Advance(time.Second)
	if len(a.strikes) != 2 {
		t.Fatalf("expected one strike per execution, got %d", len(a.strikes))
	}
}

func TestSquatAttackReturnsToSquatStep(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	start(t, SquatHighKick, a, clock)
	clock.Advance(time.Second)
	if len(a.handoffs) != 1 || a.handoffs[0] != (handoff{kind: Squat, step: 2}) {
		t.Fatalf("expected handoff to squat at step 2, got %v", a.handoffs)
	}
}

func TestSpinKickHandsOffAtApex(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	start(t, SpinKick, a, clock)
	clock.Advance(time.Second)
	if len(a.frames) != 8 {
		t.Fatalf("expected 8 frames without reversal, got %v", a.frames)
	}
	if len(a.handoffs) != 1 || a.handoffs[0].kind != Stand {
		t.Fatalf("expected handoff to stand, got %v", a.handoffs)
	}
}

func TestSquatHoldsLastFrameAndReleasesLock(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	m := start(t, Squat, a, clock)
	if !a.locked {
		t.Fatalf("expected squat to lock while crouching")
	}
	clock.Advance(time.Second)
	if m.Active() || a.locked {
		t.Fatalf("expected squat to stop itself and unlock")
	}
	if m.Step() != 2 {
		t.Fatalf("expected squat to rest on step 2, got %d", m.Step())
	}
	if len(a.handoffs) != 0 {
		t.Fatalf("expected no handoff, got %v", a.handoffs)
	}
}

func TestResumeAtFinalStepNeverSchedules(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	spec, _ := Lookup(Squat)
	m := New(spec)
	m.Go(a, clock, 2)
	if m.Active() {
		t.Fatalf("expected squat resumed at its last step to stop on the first tick")
	}
	if clock.Pending() != 0 {
		t.Fatalf("expected no timer for a move that stopped synchronously")
	}
}

func TestJumpArcLandsWhereItStarted(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	start(t, Jump, a, clock)
	clock.Advance(2 * time.Second)
	if a.y != PlayerTop {
		t.Fatalf("expected landing at %.0f, got %.0f", PlayerTop, a.y)
	}
	if len(a.handoffs) != 1 || a.handoffs[0].kind != Stand {
		t.Fatalf("expected landing handoff to stand, got %v", a.handoffs)
	}
}

func TestDirectionalJumpDriftsAndRestoresHeight(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	start(t, BackwardJump, a, clock)
	if a.height != 30 {
		t.Fatalf("expected halved height in flight, got %.0f", a.height)
	}
	clock.Advance(2 * time.Second)
	if a.x != 100-8*DirectionalDrift {
		t.Fatalf("expected x drift of 8 ticks, got %.0f", a.x)
	}
	if a.y != PlayerTop {
		t.Fatalf("expected symmetric arc, got y=%.0f", a.y)
	}
	if a.height != 60 || a.locked {
		t.Fatalf("expected height restored and unlocked, got %.0f locked=%v", a.height, a.locked)
	}
}

func TestTruncatedJumpAttackEndsEarly(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	spec, _ := Lookup(ForwardJumpKick)
	m := New(spec)
	m.Truncate(2)
	m.Go(a, clock, 0)
	if m.Total() != 2 {
		t.Fatalf("expected truncated budget of 2, got %d", m.Total())
	}
	clock.Advance(time.Second)
	if len(a.strikes) != 0 {
		t.Fatalf("expected no hit before the apex frame, got %v", a.strikes)
	}
	if len(a.handoffs) != 1 || a.handoffs[0].kind != Stand || a.y != PlayerTop {
		t.Fatalf("expected landing in stand, got %v y=%.0f", a.handoffs, a.y)
	}

	a = newFakeActor()
	m.Go(a, clock, 0)
	if m.Total() != 3 {
		t.Fatalf("expected full budget on a normal start, got %d", m.Total())
	}
	clock.Advance(time.Second)
	if len(a.strikes) != 1 || a.strikes[0] != 10 {
		t.Fatalf("expected one hit on a full execution, got %v", a.strikes)
	}
}

func TestKnockDownDriftsAwayFromOpponent(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	a.orientation = Left
	start(t, KnockDown, a, clock)
	clock.Advance(2 * time.Second)
	if a.x != 100-9*KnockDownDrift {
		t.Fatalf("expected fighter facing right to be knocked toward lower x, got %.0f", a.x)
	}
	if len(a.handoffs) != 1 || a.handoffs[0].kind != AttractiveStandUp {
		t.Fatalf("expected handoff to attractive stand-up, got %v", a.handoffs)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	m := start(t, Fall, a, clock)
	m.Stop(a)
	if a.locked {
		t.Fatalf("expected stop to release the lock")
	}
	a.locked = true
	m.Stop(a)
	if !a.locked {
		t.Fatalf("expected second stop to skip the pre-stop hook")
	}
	frames := len(a.frames)
	clock.Advance(time.Second)
	if len(a.frames) != frames {
		t.Fatalf("expected stopped move to stop ticking")
	}
}

func TestSquatEndureKeepsFirstBaseline(t *testing.T) {
	clock := sim.NewClock()
	a := newFakeActor()
	m := start(t, SquatEndure, a, clock)
	m.Stop(a)

	a.height = 40
	m.Go(a, clock, 0)
	if a.y != PlayerTop+20 {
		t.Fatalf("expected y %.0f from the first baseline, got %.0f", PlayerTop+20, a.y)
	}
	if !a.locked {
		t.Fatalf("expected squat endure to lock")
	}
}

func TestOnlyDirectionalJumpsDrift(t *testing.T) {
	for _, kind := range Kinds() {
		want := kind == ForwardJump || kind == BackwardJump
		if kind.IsDirectionalJump() != want {
			t.Fatalf("%s: expected IsDirectionalJump %v", kind, want)
		}
	}
	if !ForwardJumpKick.IsAirborne() || ForwardJumpKick.IsDirectionalJump() {
		t.Fatalf("expected jump-attacks airborne but not drifting")
	}
}
