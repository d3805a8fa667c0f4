package moves

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a move name does not match any Kind.
var ErrUnknownKind = errors.New("moves: unknown kind")

// Kind enumerates every move a fighter can perform.
type Kind uint8

const (
	Stand Kind = iota
	Walk
	WalkBackward
	Squat
	Block
	StandUp
	AttractiveStandUp
	HighKick
	LowKick
	SpinKick
	LowPunch
	HighPunch
	Uppercut
	SquatLowKick
	SquatHighKick
	SquatLowPunch
	Fall
	KnockDown
	Win
	Jump
	ForwardJump
	BackwardJump
	ForwardJumpKick
	BackwardJumpKick
	ForwardJumpPunch
	BackwardJumpPunch
	Endure
	SquatEndure

	// KindCount is the number of declared kinds.
	KindCount int = iota
)

var kindNames = [KindCount]string{
	Stand:             "stand",
	Walk:              "walk",
	WalkBackward:      "walk-backward",
	Squat:             "squat",
	Block:             "block",
	StandUp:           "stand-up",
	AttractiveStandUp: "attractive-stand-up",
	HighKick:          "high-kick",
	LowKick:           "low-kick",
	SpinKick:          "spin-kick",
	LowPunch:          "low-punch",
	HighPunch:         "high-punch",
	Uppercut:          "uppercut",
	SquatLowKick:      "squat-low-kick",
	SquatHighKick:     "squat-high-kick",
	SquatLowPunch:     "squat-low-punch",
	Fall:              "fall",
	KnockDown:         "knock-down",
	Win:               "win",
	Jump:              "jump",
	ForwardJump:       "forward-jump",
	BackwardJump:      "backward-jump",
	ForwardJumpKick:   "forward-jump-kick",
	BackwardJumpKick:  "backward-jump-kick",
	ForwardJumpPunch:  "forward-jump-punch",
	BackwardJumpPunch: "backward-jump-punch",
	Endure:            "endure",
	SquatEndure:       "squat-endure",
}

// Kinds returns every declared kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, KindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Valid reports whether k is a declared kind.
func (k Kind) Valid() bool {
	return int(k) < KindCount
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind resolves a move name such as "high-kick".
func ParseKind(name string) (Kind, error) {
	for i, candidate := range kindNames {
		if candidate == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// MarshalText encodes the kind by name so wire payloads stay readable.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// IsJumpAttack reports whether k is one of the four airborne attacks.
func (k Kind) IsJumpAttack() bool {
	switch k {
	case ForwardJumpKick, BackwardJumpKick, ForwardJumpPunch, BackwardJumpPunch:
		return true
	}
	return false
}

// IsAirborne reports whether k moves the fighter along a jump arc.
func (k Kind) IsAirborne() bool {
	switch k {
	case Jump, ForwardJump, BackwardJump:
		return true
	}
	return k.IsJumpAttack()
}

// IsDirectionalJump reports whether k is a forward or backward jump.
func (k Kind) IsDirectionalJump() bool {
	return k == ForwardJump || k == BackwardJump
}

// IsCrouched reports whether a fighter performing k is low enough that only
// low attacks reach it.
func (k Kind) IsCrouched() bool {
	return k == Squat || k == SquatEndure
}

// JumpFor returns the directional jump a jump-attack may interrupt.
func JumpFor(attack Kind) (Kind, bool) {
	switch attack {
	case ForwardJumpKick, ForwardJumpPunch:
		return ForwardJump, true
	case BackwardJumpKick, BackwardJumpPunch:
		return BackwardJump, true
	}
	return 0, false
}

// Orientation tells which way a fighter faces. Left means the fighter stands
// on the left of its opponent and faces increasing x.
type Orientation uint8

const (
	Left Orientation = iota
	Right
)

// Orientations lists both facings.
func Orientations() []Orientation {
	return []Orientation{Left, Right}
}

func (o Orientation) String() string {
	if o == Right {
		return "right"
	}
	return "left"
}

// MarshalText encodes the facing as "left" or "right".
func (o Orientation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes "left" or "right".
func (o *Orientation) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*o = Left
	case "right":
		*o = Right
	default:
		return fmt.Errorf("moves: unknown orientation %q", string(text))
	}
	return nil
}
