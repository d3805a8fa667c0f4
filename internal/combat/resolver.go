package combat

import (
	"context"
	"math"

	"github.com/evymii/ard-arena/internal/fighter"
	"github.com/evymii/ard-arena/internal/moves"
	"github.com/evymii/ard-arena/logging"
	combatlog "github.com/evymii/ard-arena/logging/combat"
)

const (
	UppercutReach   = 1.2
	JumpAttackReach = 1.5
)

// AttackEvent describes a landed attack. LifeDelta is the life the opponent
// actually lost, after blocking.
type AttackEvent struct {
	Attacker  *fighter.Fighter
	Opponent  *fighter.Fighter
	Move      moves.Kind
	Damage    float64
	LifeDelta float64
}

// Resolver decides whether an attack reaching its hit frame lands on the
// opponent.
type Resolver struct {
	fighters [2]*fighter.Fighter
	pub      logging.Publisher
	tick     func() uint64

	// OnAttack, when set, is called for every landed attack.
	OnAttack func(AttackEvent)
}

// NewResolver binds a resolver to the two fighters of a match. tick stamps
// published events; pub may be nil.
func NewResolver(a, b *fighter.Fighter, pub logging.Publisher, tick func() uint64) *Resolver {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	if tick == nil {
		tick = func() uint64 { return 0 }
	}
	return &Resolver{fighters: [2]*fighter.Fighter{a, b}, pub: pub, tick: tick}
}

// Opponent returns the other fighter, or nil when f is not in the match.
func (r *Resolver) Opponent(f *fighter.Fighter) *fighter.Fighter {
	switch f {
	case r.fighters[0]:
		return r.fighters[1]
	case r.fighters[1]:
		return r.fighters[0]
	}
	return nil
}

func (r *Resolver) side(f *fighter.Fighter) int {
	if f == r.fighters[1] {
		return 1
	}
	return 0
}

// Resolve applies damage from attacker's current move when the opponent is
// in range and the stances allow it. A miss is silent.
func (r *Resolver) Resolve(attacker *fighter.Fighter, damage float64) (AttackEvent, bool) {
	opponent := r.Opponent(attacker)
	if opponent == nil || opponent.Defeated() || !attacker.HasMove() || !opponent.HasMove() {
		return AttackEvent{}, false
	}
	attack := attacker.Move().Kind()
	if !InRange(attacker, opponent, attack) || !Compatible(attack, opponent.Move().Kind()) {
		return AttackEvent{}, false
	}

	before := opponent.Life()
	blocked := opponent.Move().Kind() == moves.Block
	after := opponent.EndureAttack(damage, attack)
	event := AttackEvent{
		Attacker:  attacker,
		Opponent:  opponent,
		Move:      attack,
		Damage:    damage,
		LifeDelta: before - after,
	}

	combatlog.Attack(context.Background(), r.pub, r.tick(),
		logging.Fighter(attacker.Name(), r.side(attacker)),
		logging.Fighter(opponent.Name(), r.side(opponent)),
		combatlog.AttackPayload{Move: attack.String(), Damage: damage, LifeDelta: event.LifeDelta, Life: after, Blocked: blocked},
	)
	if r.OnAttack != nil {
		r.OnAttack(event)
	}
	return event, true
}

// InRange compares the distance between the two centers with the
// opponent's visible width, stretched for uppercuts and jump attacks.
func InRange(attacker, opponent *fighter.Fighter, attack moves.Kind) bool {
	center := attacker.X() + attacker.VisibleWidth()/2
	opponentCenter := opponent.X() + opponent.VisibleWidth()/2
	distance := math.Abs(center - opponentCenter)
	reach := opponent.VisibleWidth()
	switch {
	case attack == moves.Uppercut:
		reach *= UppercutReach
	case attack.IsJumpAttack():
		reach *= JumpAttackReach
	}
	return distance <= reach
}

// Compatible reports whether attack can reach an opponent performing stance.
// Crouched fighters are only reached by low punches and low kicks.
func Compatible(attack, stance moves.Kind) bool {
	if !stance.IsCrouched() {
		return true
	}
	return attack == moves.LowPunch || attack == moves.LowKick
}
