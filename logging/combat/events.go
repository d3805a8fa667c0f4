package combat

import (
	"context"

	"github.com/evymii/ard-arena/logging"
)

const (
	// EventAttack is emitted when an attack lands on the opponent.
	EventAttack logging.EventType = "combat.attack"
	// EventDefeat is emitted when a fighter's life reaches zero.
	EventDefeat logging.EventType = "combat.defeat"
)

// AttackPayload describes a landed attack.
type AttackPayload struct {
	Move      string  `json:"move"`
	Damage    float64 `json:"damage"`
	LifeDelta float64 `json:"lifeDelta"`
	Life      float64 `json:"life"`
	Blocked   bool    `json:"blocked,omitempty"`
}

// DefeatPayload names the move that finished the fight.
type DefeatPayload struct {
	Move string `json:"move,omitempty"`
}

// Attack publishes a landed attack from actor on target.
func Attack(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload AttackPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventAttack,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}

// Defeat publishes the defeat of target, crediting actor.
func Defeat(ctx context.Context, pub logging.Publisher, tick uint64, actor, target logging.EntityRef, payload DefeatPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDefeat,
		Tick:     tick,
		Actor:    actor,
		Targets:  []logging.EntityRef{target},
		Severity: logging.SeverityInfo,
		Category: logging.CategoryCombat,
		Payload:  payload,
	})
}
