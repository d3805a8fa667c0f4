package moves

import (
	"time"

	"github.com/evymii/ard-arena/internal/sim"
)

// Actor is the fighter surface a move drives. Moves never hold state about
// the opponent; everything they touch goes through these methods.
type Actor interface {
	X() float64
	Y() float64
	SetX(x float64)
	SetY(y float64)
	Lock()
	Unlock()
	// Bottom is the distance between the lane floor and the bottom edge of
	// the current frame.
	Bottom() float64
	BaseHeight() float64
	SetBaseHeight(h float64)
	Orientation() Orientation
	// Strike reports that an attack reached its hit frame.
	Strike(damage float64)
	SetMove(kind Kind, step int)
	ShowFrame(kind Kind, step int)
}

// Scheduler creates the periodic timers that drive moves.
type Scheduler interface {
	Every(interval time.Duration, fn func()) sim.Timer
}

// Move is the runtime instance of one table entry for one fighter. A fighter
// allocates one Move per kind at construction and reuses it for every start.
type Move struct {
	spec *Spec

	total     int
	truncated int
	step      int
	reversing bool
	hit       bool
	counter   int

	bottom    float64
	hasBottom bool
	height    float64

	active bool
	gen    uint64
	timer  sim.Timer
}

// New binds a runtime move to its table entry.
func New(spec *Spec) *Move {
	return &Move{spec: spec, total: spec.Steps}
}

func (m *Move) Kind() Kind { return m.spec.Kind }

// Step is the frame index the next tick will show.
func (m *Move) Step() int { return m.step }

// Total is the step budget of the current execution.
func (m *Move) Total() int { return m.total }

// Active reports whether the move is currently ticking.
func (m *Move) Active() bool { return m.active }

// Damage is the life an attack removes when it connects.
func (m *Move) Damage() float64 { return m.spec.Damage }

// Spec returns the table entry backing the move.
func (m *Move) Spec() *Spec { return m.spec }

// Truncate limits the next execution to n ticks. It is consumed by Go.
func (m *Move) Truncate(n int) {
	if n < 1 {
		n = 1
	}
	m.truncated = n
}

// Go starts the move at step. The first tick runs synchronously; the
// periodic timer is only installed when that tick did not stop or replace
// the move.
func (m *Move) Go(a Actor, sched Scheduler, step int) {
	m.total = m.spec.Steps
	if m.truncated > 0 {
		m.total = m.truncated
		m.truncated = 0
	}
	m.spec.BeforeGo(m, a)
	m.step = step
	m.active = true
	m.gen++
	gen := m.gen
	m.tick(a, gen)
	if !m.running(gen) || sched == nil {
		return
	}
	m.timer = sched.Every(m.spec.Interval, func() { m.tick(a, gen) })
}

// Stop halts the move and runs its pre-stop hook. Stopping an inactive move
// does nothing.
func (m *Move) Stop(a Actor) {
	if !m.active {
		return
	}
	m.active = false
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.spec.BeforeStop(m, a)
}

func (m *Move) running(gen uint64) bool {
	return m.active && m.gen == gen
}

func (m *Move) tick(a Actor, gen uint64) {
	if !m.running(gen) {
		return
	}
	a.ShowFrame(m.spec.Kind, m.step)
	m.spec.Action(m, a)
	if !m.running(gen) {
		return
	}
	m.spec.Advance(m, a)
}

func (m *Move) captureBottom(a Actor) {
	m.bottom = a.Bottom()
	m.hasBottom = true
}

// keepDistance shifts the fighter vertically so the frame bottom stays on
// the baseline captured when the move started.
func (m *Move) keepDistance(a Actor) {
	if !m.hasBottom {
		return
	}
	current := a.Bottom()
	if current != m.bottom {
		a.SetY(a.Y() + current - m.bottom)
	}
}
