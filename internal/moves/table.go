package moves

import (
	"fmt"
	"math"
	"time"
)

// Class groups kinds that share a step progression rule.
type Class uint8

const (
	ClassCyclic Class = iota
	ClassFinite
	ClassReaction
	ClassAttack
	ClassJump
	ClassDirectionalJump
	ClassJumpAttack
)

func (c Class) String() string {
	switch c {
	case ClassCyclic:
		return "cyclic"
	case ClassFinite:
		return "finite"
	case ClassReaction:
		return "reaction"
	case ClassAttack:
		return "attack"
	case ClassJump:
		return "jump"
	case ClassDirectionalJump:
		return "directional-jump"
	case ClassJumpAttack:
		return "jump-attack"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// Hook is a per-kind effect. Every Spec field of this type is non-nil; kinds
// without an effect use Nop.
type Hook func(m *Move, a Actor)

// Nop is the explicit empty hook.
func Nop(*Move, Actor) {}

// Spec is one row of the behavior table.
type Spec struct {
	Kind     Kind
	Class    Class
	Steps    int
	Interval time.Duration

	// Damage is set for attack classes only.
	Damage float64
	// Return and ReturnStep name the move an attack or jump hands off to.
	Return     Kind
	ReturnStep int
	// NoReturn attacks hand off at the apex instead of reversing.
	NoReturn bool
	// Drift is the horizontal displacement per tick for directional jumps
	// and jump-attacks.
	Drift float64

	BeforeGo   Hook
	BeforeStop Hook
	Action     Hook
	Advance    Hook
}

// HitStep is the frame index at which an attack registers its hit.
func (s *Spec) HitStep(total int) int {
	if s.Class == ClassJumpAttack {
		return JumpAttackApex
	}
	return int(math.Round(float64(total) / 2))
}

var table = buildTable()

// Lookup returns the table entry for k.
func Lookup(k Kind) (*Spec, bool) {
	if !k.Valid() {
		return nil, false
	}
	return &table[k], true
}

// Table returns a copy of every entry in kind order.
func Table() []Spec {
	out := make([]Spec, len(table))
	copy(out, table[:])
	return out
}

// Validate checks that the table is total: every kind has a row keyed by
// itself, a positive step count and interval, and no nil hooks.
func Validate() error {
	for i := range table {
		spec := &table[i]
		kind := Kind(i)
		if spec.Kind != kind {
			return fmt.Errorf("moves: row %d declares kind %s", i, spec.Kind)
		}
		if spec.Steps <= 0 {
			return fmt.Errorf("moves: %s has no steps", kind)
		}
		if spec.Interval <= 0 {
			return fmt.Errorf("moves: %s has no interval", kind)
		}
		if spec.BeforeGo == nil || spec.BeforeStop == nil || spec.Action == nil || spec.Advance == nil {
			return fmt.Errorf("moves: %s has a nil hook", kind)
		}
		if spec.Class == ClassAttack && spec.Damage <= 0 {
			return fmt.Errorf("moves: attack %s has no damage", kind)
		}
		if spec.Class == ClassJumpAttack && spec.Damage <= 0 {
			return fmt.Errorf("moves: jump attack %s has no damage", kind)
		}
		if !spec.Return.Valid() {
			return fmt.Errorf("moves: %s returns to unknown kind", kind)
		}
	}
	return nil
}

func buildTable() [KindCount]Spec {
	var t [KindCount]Spec

	t[Stand] = cyclic(Stand, pinTop)
	t[Walk] = walk(Walk, WalkStep)
	t[WalkBackward] = walk(WalkBackward, -WalkStep)

	t[Squat] = crouch(Squat)
	t[Block] = crouch(Block)
	t[StandUp] = finite(StandUp, 3, 100*time.Millisecond, standUpAction)
	t[AttractiveStandUp] = finite(AttractiveStandUp, 4, 100*time.Millisecond, attractiveStandUpAction)
	t[AttractiveStandUp].BeforeStop = func(m *Move, a Actor) {
		a.Unlock()
		a.SetY(PlayerTop)
	}
	t[Fall] = finite(Fall, 7, 100*time.Millisecond, keepDistance)
	t[Win] = finite(Win, 10, 100*time.Millisecond, keepDistance)
	t[Win].BeforeGo = func(m *Move, a Actor) {
		a.Lock()
		a.SetY(PlayerTop)
		m.captureBottom(a)
	}

	t[Endure] = reaction(Endure, 3, handOffAtLast(Stand, false))
	t[SquatEndure] = reaction(SquatEndure, 3, handOffAtLast(Squat, true))
	// The baseline is captured on the first start only.
	t[SquatEndure].BeforeGo = func(m *Move, a Actor) {
		a.Lock()
		if !m.hasBottom {
			m.captureBottom(a)
		}
	}
	t[KnockDown] = reaction(KnockDown, 10, knockDownAction)

	t[HighKick] = attack(HighKick, 7, 10, AttackInterval)
	t[LowKick] = attack(LowKick, 6, 6, AttackInterval)
	t[LowPunch] = attack(LowPunch, 5, 5, AttackInterval)
	t[HighPunch] = attack(HighPunch, 5, 8, AttackInterval)
	t[Uppercut] = attack(Uppercut, 5, 13, 60*time.Millisecond)
	t[Uppercut].BeforeStop = func(m *Move, a Actor) {
		a.Unlock()
		m.keepDistance(a)
	}
	t[SpinKick] = attack(SpinKick, 8, 13, 60*time.Millisecond)
	t[SpinKick].NoReturn = true
	t[SquatHighKick] = squatAttack(SquatHighKick, 4, 6)
	t[SquatLowPunch] = squatAttack(SquatLowPunch, 3, 4)
	t[SquatLowKick] = squatAttack(SquatLowKick, 3, 4)

	t[Jump] = Spec{
		Kind:     Jump,
		Class:    ClassJump,
		Steps:    6,
		Interval: 60 * time.Millisecond,
		Return:   Stand,
		BeforeGo: func(m *Move, a Actor) {
			m.reversing = false
			a.Lock()
		},
		BeforeStop: unlock,
		Action:     jumpAction,
		Advance:    advancePingPong,
	}
	t[ForwardJump] = directionalJump(ForwardJump, DirectionalDrift)
	t[BackwardJump] = directionalJump(BackwardJump, -DirectionalDrift)

	t[ForwardJumpKick] = jumpAttack(ForwardJumpKick, 10, DirectionalDrift)
	t[BackwardJumpKick] = jumpAttack(BackwardJumpKick, 10, -DirectionalDrift)
	t[ForwardJumpPunch] = jumpAttack(ForwardJumpPunch, 9, DirectionalDrift)
	t[BackwardJumpPunch] = jumpAttack(BackwardJumpPunch, 9, -DirectionalDrift)

	return t
}

func base(kind Kind, class Class, steps int, interval time.Duration) Spec {
	return Spec{
		Kind:       kind,
		Class:      class,
		Steps:      steps,
		Interval:   interval,
		Return:     Stand,
		BeforeGo:   Nop,
		BeforeStop: Nop,
		Action:     Nop,
		Advance:    Nop,
	}
}

func cyclic(kind Kind, beforeGo Hook) Spec {
	s := base(kind, ClassCyclic, 9, DefaultInterval)
	s.BeforeGo = beforeGo
	s.Advance = advanceCyclic
	return s
}

func walk(kind Kind, delta float64) Spec {
	s := cyclic(kind, Nop)
	s.Action = func(m *Move, a Actor) {
		a.SetX(a.X() + delta)
		a.SetY(PlayerTop)
	}
	return s
}

func finite(kind Kind, steps int, interval time.Duration, action Hook) Spec {
	s := base(kind, ClassFinite, steps, interval)
	s.BeforeGo = lockAndCapture
	s.BeforeStop = unlock
	s.Action = action
	s.Advance = advanceFinite
	return s
}

// crouch builds squat and block: hold the last frame and release the lock
// once the crouch is complete.
func crouch(kind Kind) Spec {
	return finite(kind, 3, AttackInterval, func(m *Move, a Actor) {
		m.keepDistance(a)
		if m.step == 2 {
			m.Stop(a)
		}
	})
}

func reaction(kind Kind, steps int, action Hook) Spec {
	s := base(kind, ClassReaction, steps, DefaultInterval)
	s.BeforeGo = lock
	s.BeforeStop = unlock
	s.Action = action
	s.Advance = advanceCounting
	return s
}

func attack(kind Kind, steps int, damage float64, interval time.Duration) Spec {
	s := base(kind, ClassAttack, steps, interval)
	s.Damage = damage
	s.BeforeGo = func(m *Move, a Actor) {
		m.reversing = false
		m.hit = false
		a.Lock()
		m.captureBottom(a)
	}
	s.BeforeStop = unlock
	s.Action = attackAction
	s.Advance = advanceAttack
	return s
}

func squatAttack(kind Kind, steps int, damage float64) Spec {
	s := attack(kind, steps, damage, 70*time.Millisecond)
	s.Return = Squat
	s.ReturnStep = 2
	return s
}

func directionalJump(kind Kind, drift float64) Spec {
	s := base(kind, ClassDirectionalJump, 8, DefaultInterval)
	s.Drift = drift
	s.BeforeGo = func(m *Move, a Actor) {
		a.Lock()
		m.height = a.BaseHeight()
		a.SetBaseHeight(m.height / 2)
	}
	s.BeforeStop = func(m *Move, a Actor) {
		a.Unlock()
		a.SetBaseHeight(m.height)
	}
	s.Action = func(m *Move, a Actor) {
		if float64(m.step) > float64(m.total-1)/2 {
			a.SetY(a.Y() + DirectionalRise)
		} else {
			a.SetY(a.Y() - DirectionalRise)
		}
		a.SetX(a.X() + m.spec.Drift)
	}
	s.Advance = advanceLinear
	return s
}

func jumpAttack(kind Kind, damage, drift float64) Spec {
	s := base(kind, ClassJumpAttack, 3, DefaultInterval)
	s.Damage = damage
	s.Drift = drift
	s.BeforeGo = func(m *Move, a Actor) {
		m.hit = false
		m.counter = 0
		a.Lock()
	}
	s.BeforeStop = unlock
	s.Action = func(m *Move, a Actor) {
		if !m.hit && m.step == JumpAttackApex {
			m.hit = true
			a.Strike(m.spec.Damage)
			if !m.active {
				return
			}
		}
		a.SetY(a.Y() + DirectionalRise)
		a.SetX(a.X() + m.spec.Drift)
	}
	s.Advance = advanceJumpAttack
	return s
}

func lock(_ *Move, a Actor)   { a.Lock() }
func unlock(_ *Move, a Actor) { a.Unlock() }

func lockAndCapture(m *Move, a Actor) {
	m.captureBottom(a)
	a.Lock()
}

func pinTop(_ *Move, a Actor) { a.SetY(PlayerTop) }

func keepDistance(m *Move, a Actor) { m.keepDistance(a) }

func standUpAction(m *Move, a Actor) {
	if m.step == 2 {
		m.Stop(a)
		a.SetMove(Stand, 0)
		a.SetY(PlayerTop)
		return
	}
	m.keepDistance(a)
}

func attractiveStandUpAction(m *Move, a Actor) {
	if m.step == m.total-1 {
		m.Stop(a)
		a.SetMove(Stand, 0)
		return
	}
	m.keepDistance(a)
}

func handOffAtLast(next Kind, keep bool) Hook {
	return func(m *Move, a Actor) {
		if m.step == m.total-1 {
			m.Stop(a)
			a.SetMove(next, 0)
			return
		}
		if keep {
			m.keepDistance(a)
		}
	}
}

func knockDownAction(m *Move, a Actor) {
	if m.step == m.total-1 {
		m.Stop(a)
		a.SetMove(AttractiveStandUp, 0)
		return
	}
	drift := KnockDownDrift
	if a.Orientation() == Left {
		drift = -drift
	}
	a.SetY(a.Y() + KnockDownDrop)
	a.SetX(a.X() + drift)
}

func attackAction(m *Move, a Actor) {
	m.keepDistance(a)
	if !m.hit && m.step == m.spec.HitStep(m.total) {
		m.hit = true
		a.Strike(m.spec.Damage)
	}
}

func jumpAction(m *Move, a Actor) {
	switch {
	case !m.reversing && m.step == 0:
		a.SetY(a.Y() + JumpRise)
	case !m.reversing:
		a.SetY(a.Y() - JumpRise)
	case m.step == m.total-1:
		a.SetY(a.Y() - JumpRise)
	default:
		a.SetY(a.Y() + JumpFall)
	}
}

func advanceCyclic(m *Move, _ Actor) {
	m.step = (m.step + 1) % m.total
}

func advanceFinite(m *Move, _ Actor) {
	if m.step >= m.total-1 {
		m.step = m.total - 1
		return
	}
	m.step++
}

func advanceCounting(m *Move, _ Actor) {
	m.step++
}

func advanceAttack(m *Move, a Actor) {
	if m.reversing {
		m.step--
		if m.step <= 0 {
			m.Stop(a)
			a.SetMove(m.spec.Return, m.spec.ReturnStep)
		}
		return
	}
	m.step++
	if m.step < m.total {
		return
	}
	if m.spec.NoReturn {
		m.Stop(a)
		a.SetMove(m.spec.Return, 0)
		return
	}
	m.reversing = true
	m.step--
}

func advancePingPong(m *Move, a Actor) {
	if m.reversing {
		m.step--
		if m.step <= 0 {
			m.Stop(a)
			a.SetMove(m.spec.Return, 0)
		}
		return
	}
	m.step++
	if m.step >= m.total {
		m.reversing = true
		m.step--
	}
}

func advanceLinear(m *Move, a Actor) {
	m.step++
	if m.step >= m.total {
		m.Stop(a)
		a.SetMove(m.spec.Return, 0)
	}
}

func advanceJumpAttack(m *Move, a Actor) {
	m.step++
	m.counter++
	if m.step >= JumpAttackApex {
		m.step = JumpAttackApex
	}
	if m.counter >= m.total {
		m.Stop(a)
		a.SetMove(Stand, 0)
		a.SetY(PlayerTop)
	}
}
