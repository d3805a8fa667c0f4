package moves

import "time"

// Gameplay balance. These values are fixed and shared by every peer; a remote
// opponent only mirrors correctly when both sides run the same numbers.
const (
	// PlayerTop is the y of a standing fighter's top edge.
	PlayerTop = 230.0

	DefaultInterval = 80 * time.Millisecond
	AttackInterval  = 40 * time.Millisecond

	WalkStep = 10.0

	JumpRise         = 20.0
	JumpFall         = 25.0
	DirectionalRise  = 26.0
	DirectionalDrift = 23.0

	KnockDownDrop  = 10.0
	KnockDownDrift = 25.0

	// JumpAttackApex is the last frame index of an airborne attack; the hit
	// registers when the animation reaches it.
	JumpAttackApex = 2
)
