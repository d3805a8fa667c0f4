package arena

import "github.com/evymii/ard-arena/internal/moves"

const (
	DefaultWidth  = 600.0
	DefaultHeight = 400.0
)

// Body is what the lane needs to know about a fighter.
type Body interface {
	X() float64
	Y() float64
	VisibleWidth() float64
	VisibleHeight() float64
	Orientation() moves.Orientation
	// Drifting reports whether the body is on a forward or backward jump.
	// A drifting mover that meets its opponent keeps its x.
	Drifting() bool
}

// Resolution is the outcome of a constrained horizontal move. The mover
// commits X and Facing; the opponent commits OpponentX and OpponentFacing.
type Resolution struct {
	X              float64
	Facing         moves.Orientation
	Opponent       Body
	OpponentX      float64
	OpponentFacing moves.Orientation
	// Pushed is set when the opponent was displaced to make room.
	Pushed bool
}

// Lane is the one-dimensional strip two fighters share.
type Lane struct {
	width  float64
	height float64
	bodies [2]Body
}

// NewLane builds a lane; non-positive sizes fall back to the defaults.
func NewLane(width, height float64) *Lane {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &Lane{width: width, height: height}
}

func (l *Lane) Width() float64  { return l.width }
func (l *Lane) Height() float64 { return l.height }

// Attach places the two bodies that share the lane.
func (l *Lane) Attach(a, b Body) {
	l.bodies = [2]Body{a, b}
}

// Opponent returns the other body, or nil when b is not on the lane.
func (l *Lane) Opponent(b Body) Body {
	switch b {
	case l.bodies[0]:
		return l.bodies[1]
	case l.bodies[1]:
		return l.bodies[0]
	}
	return nil
}

// Resolve constrains mover's proposed x against the lane bounds and the
// opponent, and recomputes both facings.
func (l *Lane) Resolve(mover Body, x float64) Resolution {
	width := mover.VisibleWidth()
	x = clamp(x, 0, l.width-width)
	res := Resolution{X: x, Facing: mover.Orientation()}

	opp := l.Opponent(mover)
	if opp == nil {
		return res
	}
	res.Opponent = opp
	res.OpponentX = opp.X()
	res.OpponentFacing = opp.Orientation()

	if !Above(mover, opp) && overlaps(mover.Orientation(), x, width, res.OpponentX, opp.VisibleWidth()) {
		res.X, res.OpponentX = l.push(mover, x, opp)
		res.Pushed = res.OpponentX != opp.X()
	}
	res.Facing, res.OpponentFacing = Facings(res.X, res.OpponentX)
	return res
}

// Above reports whether a is entirely above b. Only the mover is tested: a
// grounded fighter walking under a jumping one still collides with it.
func Above(a, b Body) bool {
	return a.Y()+a.VisibleHeight() <= b.Y()
}

// Overlapping reports whether the two attached bodies share horizontal space
// while neither is above the other.
func (l *Lane) Overlapping() bool {
	a, b := l.bodies[0], l.bodies[1]
	if a == nil || b == nil || Above(a, b) || Above(b, a) {
		return false
	}
	return a.X() < b.X()+b.VisibleWidth() && b.X() < a.X()+a.VisibleWidth()
}

// Facings returns the facing of a body at x and one at opponentX. The body
// with the smaller x faces increasing x; on a tie the mover turns right.
func Facings(x, opponentX float64) (moves.Orientation, moves.Orientation) {
	if x < opponentX {
		return moves.Left, moves.Right
	}
	return moves.Right, moves.Left
}

func overlaps(facing moves.Orientation, x, width, oppX, oppWidth float64) bool {
	if facing == moves.Left {
		return x+width > oppX
	}
	return x < oppX+oppWidth
}

// push advances the mover by at most the room left behind the opponent and
// shifts the opponent by the same amount. The mover then ends no closer than
// adjacent to the opponent.
func (l *Lane) push(mover Body, x float64, opp Body) (float64, float64) {
	if mover.Drifting() {
		return mover.X(), opp.X()
	}
	width := mover.VisibleWidth()
	oppX := opp.X()
	oppWidth := opp.VisibleWidth()

	if mover.Orientation() == moves.Left {
		diff := min(l.width-(oppX+oppWidth), x-mover.X())
		if diff > 0 {
			oppX += diff
		}
		x = min(x, oppX-width)
		if x < 0 {
			x = 0
			oppX = clamp(max(oppX, width), 0, l.width-oppWidth)
		}
		return x, oppX
	}
	diff := min(oppX, mover.X()-x)
	if diff > 0 {
		oppX -= diff
	}
	x = max(x, oppX+oppWidth)
	if x > l.width-width {
		x = max(l.width-width, 0)
		oppX = clamp(min(oppX, x-oppWidth), 0, l.width-oppWidth)
	}
	return x, oppX
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
