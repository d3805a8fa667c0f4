package fighter

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/evymii/ard-arena/internal/arena"
	"github.com/evymii/ard-arena/internal/moves"
)

const (
	MaxLife     = 100.0
	BaseWidth   = 30.0
	BaseHeight  = 60.0
	StartX      = 50.0
	BlockFactor = 0.2
)

// ErrUnknownCharacter is returned when a fighter is created with a name that
// has no artwork.
var ErrUnknownCharacter = errors.New("fighter: unknown character")

var characters = []string{"subzero", "kano"}

// Characters lists the playable character names.
func Characters() []string {
	out := make([]string, len(characters))
	copy(out, characters)
	return out
}

// NormalizeName validates a character name and returns its canonical form.
func NormalizeName(name string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, c := range characters {
		if c == normalized {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
}

// Observer receives the fighter's outward notifications.
type Observer interface {
	// Attack fires when one of the fighter's attacks reaches its hit frame.
	Attack(f *Fighter, damage float64)
	// Defeated fires once, when life first reaches zero.
	Defeated(f *Fighter)
}

// Fighter is one combatant. It is the only writer of its own position, life,
// lock flag and active move.
type Fighter struct {
	name  string
	sched moves.Scheduler

	moves   [moves.KindCount]*moves.Move
	current *moves.Move

	x, y        float64
	orientation moves.Orientation
	width       float64
	height      float64
	life        float64
	locked      bool
	defeated    bool

	frame  Frame
	frames map[frameKey]Frame

	lane     *arena.Lane
	observer Observer
}

// New creates a fighter standing at the lane start. Moves run on sched.
func New(name string, orientation moves.Orientation, sched moves.Scheduler) (*Fighter, error) {
	canonical, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}
	f := &Fighter{
		name:        canonical,
		sched:       sched,
		x:           StartX,
		y:           moves.PlayerTop,
		orientation: orientation,
		width:       BaseWidth,
		height:      BaseHeight,
		life:        MaxLife,
	}
	for _, kind := range moves.Kinds() {
		spec, _ := moves.Lookup(kind)
		f.moves[kind] = moves.New(spec)
	}
	return f, nil
}

func (f *Fighter) Name() string { return f.name }

// AttachLane routes every later horizontal write through the lane solver.
func (f *Fighter) AttachLane(lane *arena.Lane) { f.lane = lane }

func (f *Fighter) SetObserver(o Observer) { f.observer = o }

// SetMove switches the active move. Starting the current kind again does
// nothing. While locked only Win may start, except that a jump-attack may
// take over the matching directional jump once it is past its midpoint.
func (f *Fighter) SetMove(kind moves.Kind, step int) {
	if !kind.Valid() {
		panic(fmt.Sprintf("fighter %s: no move %s", f.name, kind))
	}
	if f.current != nil && f.current.Kind() == kind {
		return
	}
	next := f.moves[kind]

	if jump, ok := moves.JumpFor(kind); ok && f.current != nil && f.current.Kind() == jump && f.current.Active() {
		if f.current.Step()*2 >= f.current.Total() {
			next.Truncate(f.current.Total() - f.current.Step())
			f.current.Stop(f)
			f.locked = false
		}
	}

	if f.locked && kind != moves.Win {
		return
	}
	if f.current != nil {
		f.current.Stop(f)
	}
	f.current = next
	next.Go(f, f.sched, step)
}

// Move returns the active move. Querying before the first SetMove is a setup
// defect.
func (f *Fighter) Move() *moves.Move {
	if f.current == nil {
		panic(fmt.Sprintf("fighter %s: no current move", f.name))
	}
	return f.current
}

// HasMove reports whether SetMove has been called at least once.
func (f *Fighter) HasMove() bool { return f.current != nil }

// StopMove halts the active move without starting another.
func (f *Fighter) StopMove() {
	if f.current != nil {
		f.current.Stop(f)
	}
}

func (f *Fighter) X() float64 { return f.x }
func (f *Fighter) Y() float64 { return f.y }

// SetX proposes a new horizontal position. Once a lane is attached the lane
// decides where both fighters end up and which way they face.
func (f *Fighter) SetX(x float64) {
	if f.lane == nil {
		f.x = x
		return
	}
	res := f.lane.Resolve(f, x)
	f.x = res.X
	f.orientation = res.Facing
	if opp, ok := res.Opponent.(*Fighter); ok {
		opp.x = res.OpponentX
		opp.orientation = res.OpponentFacing
	}
}

func (f *Fighter) SetY(y float64) { f.y = y }

// SetPosition mirrors a remote position report through the lane solver.
func (f *Fighter) SetPosition(x, y float64) {
	f.y = y
	f.SetX(x)
}

func (f *Fighter) Orientation() moves.Orientation { return f.orientation }

func (f *Fighter) SetOrientation(o moves.Orientation) { f.orientation = o }

func (f *Fighter) Lock()        { f.locked = true }
func (f *Fighter) Unlock()      { f.locked = false }
func (f *Fighter) Locked() bool { return f.locked }

func (f *Fighter) BaseWidth() float64      { return f.width }
func (f *Fighter) BaseHeight() float64     { return f.height }
func (f *Fighter) SetBaseHeight(h float64) { f.height = h }
func (f *Fighter) SetBaseWidth(w float64)  { f.width = w }
func (f *Fighter) Frame() Frame            { return f.frame }
func (f *Fighter) Life() float64           { return f.life }
func (f *Fighter) Defeated() bool          { return f.defeated }

// VisibleWidth is the width of the current frame, or the base width when the
// frame size is unknown.
func (f *Fighter) VisibleWidth() float64 {
	if f.frame.Width > 0 {
		return f.frame.Width
	}
	return f.width
}

func (f *Fighter) VisibleHeight() float64 {
	if f.frame.Height > 0 {
		return f.frame.Height
	}
	return f.height
}

// Bottom is the gap between the lane floor and the bottom of the current
// frame.
func (f *Fighter) Bottom() float64 {
	if f.lane == nil {
		return 0
	}
	return f.lane.Height() - (f.VisibleHeight() + f.y)
}

// Airborne reports whether the active move follows a jump arc.
func (f *Fighter) Airborne() bool {
	return f.current != nil && f.current.Kind().IsAirborne()
}

// Drifting reports whether the active move is a forward or backward jump.
func (f *Fighter) Drifting() bool {
	return f.current != nil && f.current.Kind().IsDirectionalJump()
}

// ShowFrame selects the animation frame for kind at step.
func (f *Fighter) ShowFrame(kind moves.Kind, step int) {
	f.frame = f.lookupFrame(kind, step)
}

// Strike forwards an attack at its hit frame to the observer.
func (f *Fighter) Strike(damage float64) {
	if f.observer != nil {
		f.observer.Attack(f, damage)
	}
}

// EndureAttack applies a landed attack and returns the remaining life. A
// defeated fighter is not affected.
func (f *Fighter) EndureAttack(damage float64, attack moves.Kind) float64 {
	if f.defeated {
		return f.life
	}
	current := f.Move().Kind()
	if current == moves.Block {
		damage *= BlockFactor
	} else {
		f.locked = false
		switch {
		case current.IsCrouched():
			f.SetMove(moves.SquatEndure, 0)
		case attack == moves.Uppercut || attack == moves.SpinKick:
			f.SetMove(moves.KnockDown, 0)
		default:
			f.SetMove(moves.Endure, 0)
		}
	}
	f.life = clampLife(f.life - damage)
	if f.life == 0 && !f.defeated {
		f.defeated = true
		f.locked = false
		f.SetMove(moves.Fall, 0)
		if f.observer != nil {
			f.observer.Defeated(f)
		}
	}
	return f.life
}

// SetLife overwrites life from a remote report. It never triggers defeat.
func (f *Fighter) SetLife(life float64) {
	f.life = clampLife(life)
}

func clampLife(life float64) float64 {
	return math.Min(math.Max(life, 0), MaxLife)
}
