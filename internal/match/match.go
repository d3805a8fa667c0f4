package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/evymii/ard-arena/internal/arena"
	"github.com/evymii/ard-arena/internal/combat"
	"github.com/evymii/ard-arena/internal/fighter"
	"github.com/evymii/ard-arena/internal/moves"
	"github.com/evymii/ard-arena/internal/sim"
	"github.com/evymii/ard-arena/internal/telemetry"
	"github.com/evymii/ard-arena/logging"
	combatlog "github.com/evymii/ard-arena/logging/combat"
	"github.com/evymii/ard-arena/logging/lifecycle"
)

const (
	DefaultCountdown = 60
	// OpponentStartX places the second fighter; the lane clamps it against
	// the right wall.
	OpponentStartX = 940.0
)

var (
	ErrAlreadyInitialized = errors.New("match: already initialized")
	ErrInvalidSide        = errors.New("match: invalid side")
)

type Reason string

const (
	ReasonDefeat       Reason = "defeat"
	ReasonTimeout      Reason = "timeout"
	ReasonOpponentLeft Reason = "opponent-left"
)

// Result is the outcome of a finished match. Winner and Loser are sides; both
// are -1 on a draw.
type Result struct {
	Winner int    `json:"winner"`
	Loser  int    `json:"loser"`
	Draw   bool   `json:"draw,omitempty"`
	Reason Reason `json:"reason"`
}

type Config struct {
	Characters [2]string
	LaneWidth  float64
	LaneHeight float64
	// Countdown is the match length in seconds.
	Countdown int
	// Frames, when set, is preloaded by Init before the countdown starts.
	Frames    fighter.FrameSource
	Publisher logging.Publisher
	Logger    telemetry.Logger
	MatchID   string

	OnAttack func(combat.AttackEvent)
	OnEnd    func(Result)
}

// Match owns two fighters, their lane and the countdown. All methods must be
// called from the goroutine that advances the match clock.
type Match struct {
	cfg      Config
	id       string
	clock    *sim.Clock
	lane     *arena.Lane
	fighters [2]*fighter.Fighter
	resolver *combat.Resolver
	pub      logging.Publisher
	logger   telemetry.Logger

	countdown      int
	countdownTimer sim.Timer
	initialized    bool
	closed         bool
	over           bool
	result         Result
}

// New creates the fighters of a match. The match does nothing until Init.
func New(cfg Config) (*Match, error) {
	if cfg.Countdown <= 0 {
		cfg.Countdown = DefaultCountdown
	}
	if cfg.MatchID == "" {
		cfg.MatchID = uuid.NewString()
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	m := &Match{
		cfg:       cfg,
		id:        cfg.MatchID,
		clock:     sim.NewClock(),
		lane:      arena.NewLane(cfg.LaneWidth, cfg.LaneHeight),
		pub:       logging.WithMatch(cfg.Publisher, cfg.MatchID),
		logger:    cfg.Logger,
		countdown: cfg.Countdown,
	}
	obs := observer{m: m}
	for side, name := range cfg.Characters {
		f, err := fighter.New(name, startOrientation(side), m.clock)
		if err != nil {
			return nil, fmt.Errorf("match: side %d: %w", side, err)
		}
		f.SetObserver(obs)
		m.fighters[side] = f
	}
	m.resolver = combat.NewResolver(m.fighters[0], m.fighters[1], m.pub, m.Tick)
	m.resolver.OnAttack = cfg.OnAttack
	return m, nil
}

func startOrientation(side int) moves.Orientation {
	if side == 0 {
		return moves.Left
	}
	return moves.Right
}

// Init validates the move table, preloads artwork, places the fighters and
// starts the countdown. ready runs once, after everything is in place.
func (m *Match) Init(ctx context.Context, ready func()) error {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	if err := moves.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	if m.cfg.Frames != nil {
		g, gctx := errgroup.WithContext(ctx)
		for _, f := range m.fighters {
			g.Go(func() error { return f.Init(gctx, m.cfg.Frames) })
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("match: load frames: %w", err)
		}
	}
	m.initialized = true

	for _, f := range m.fighters {
		f.SetMove(moves.Stand, 0)
	}
	m.lane.Attach(m.fighters[0], m.fighters[1])
	for _, f := range m.fighters {
		f.AttachLane(m.lane)
	}
	m.fighters[1].SetX(OpponentStartX)

	m.countdownTimer = m.clock.Every(time.Second, m.countdownTick)
	lifecycle.MatchStarted(ctx, m.pub, m.Tick(), m.ref(), lifecycle.MatchStartedPayload{
		Fighters:  [2]string{m.fighters[0].Name(), m.fighters[1].Name()},
		Countdown: m.countdown,
		Width:     m.lane.Width(),
	})
	m.logger.Printf("match %s started: %s vs %s", m.id, m.fighters[0].Name(), m.fighters[1].Name())
	if ready != nil {
		ready()
	}
	return nil
}

func (m *Match) ID() string { return m.id }

func (m *Match) Clock() *sim.Clock { return m.clock }

func (m *Match) Lane() *arena.Lane { return m.lane }

// Now is the elapsed match time.
func (m *Match) Now() time.Duration { return m.clock.Now() }

// Tick is the match time in milliseconds, used to stamp events.
func (m *Match) Tick() uint64 { return uint64(m.clock.Now() / time.Millisecond) }

// Advance moves the match clock forward by d, firing every due timer.
func (m *Match) Advance(d time.Duration) { m.clock.Advance(d) }

// AdvanceTo moves the match clock to t. Earlier targets are ignored.
func (m *Match) AdvanceTo(t time.Duration) { m.clock.AdvanceTo(t) }

// Fighter returns the fighter at side, or nil for an invalid side.
func (m *Match) Fighter(side int) *fighter.Fighter {
	if side < 0 || side > 1 {
		return nil
	}
	return m.fighters[side]
}

func (m *Match) Countdown() int { return m.countdown }

func (m *Match) Over() bool { return m.over }

// Result is valid once Over reports true.
func (m *Match) Result() Result { return m.result }

// Intent asks the fighter at side to start kind. It reports whether the
// fighter is now performing kind. Intents are ignored before Init and after
// the match is over.
func (m *Match) Intent(side int, kind moves.Kind) bool {
	f := m.Fighter(side)
	if f == nil || !kind.Valid() || !m.live() {
		return false
	}
	f.SetMove(kind, 0)
	return f.Move().Kind() == kind
}

// SetLife mirrors a remote life report onto the fighter at side.
func (m *Match) SetLife(side int, life float64) error {
	f := m.Fighter(side)
	if f == nil {
		return fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	if m.live() {
		f.SetLife(life)
	}
	return nil
}

// SetPosition mirrors a remote position report onto the fighter at side.
func (m *Match) SetPosition(side int, x, y float64) error {
	f := m.Fighter(side)
	if f == nil {
		return fmt.Errorf("%w: %d", ErrInvalidSide, side)
	}
	if m.live() {
		f.SetPosition(x, y)
	}
	return nil
}

// OpponentLeft ends the match because the fighter at side lost its remote
// peer. The remaining fighter wins.
func (m *Match) OpponentLeft(side int) {
	leaver := m.Fighter(side)
	if leaver == nil || !m.live() {
		return
	}
	winner := 1 - side
	m.finish()
	leaver.StopMove()
	m.fighters[winner].StopMove()
	m.fighters[winner].SetMove(moves.Win, 0)
	lifecycle.OpponentLeft(context.Background(), m.pub, m.Tick(), logging.Fighter(leaver.Name(), side))
	m.conclude(Result{Winner: winner, Loser: side, Reason: ReasonOpponentLeft})
}

// Close stops every timer the match owns. The match cannot be used after.
func (m *Match) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
	}
	for _, f := range m.fighters {
		f.StopMove()
	}
}

func (m *Match) live() bool {
	return m.initialized && !m.over && !m.closed
}

func (m *Match) ref() logging.EntityRef {
	return logging.EntityRef{ID: m.id, Kind: logging.EntityKindMatch}
}

func (m *Match) side(f *fighter.Fighter) int {
	if f == m.fighters[1] {
		return 1
	}
	return 0
}

func (m *Match) countdownTick() {
	if m.over {
		return
	}
	m.countdown--
	if m.countdown > 0 {
		return
	}
	m.countdown = 0
	m.timeout()
}

func (m *Match) timeout() {
	m.finish()
	for _, f := range m.fighters {
		f.StopMove()
	}
	a, b := m.fighters[0], m.fighters[1]
	var result Result
	switch {
	case a.Life() == b.Life():
		a.Lock()
		b.Lock()
		result = Result{Winner: -1, Loser: -1, Draw: true, Reason: ReasonTimeout}
	case a.Life() > b.Life():
		result = Result{Winner: 0, Loser: 1, Reason: ReasonTimeout}
	default:
		result = Result{Winner: 1, Loser: 0, Reason: ReasonTimeout}
	}
	if !result.Draw {
		winner, loser := m.fighters[result.Winner], m.fighters[result.Loser]
		winner.SetMove(moves.Win, 0)
		loser.Unlock()
		loser.SetMove(moves.Fall, 0)
	}
	lifecycle.MatchTimedOut(context.Background(), m.pub, m.Tick(), m.ref(), m.endPayload(result))
	m.conclude(result)
}

func (m *Match) defeated(f *fighter.Fighter) {
	if !m.live() {
		return
	}
	loser := m.side(f)
	winner := 1 - loser
	m.finish()
	m.fighters[winner].StopMove()
	m.fighters[winner].SetMove(moves.Win, 0)
	combatlog.Defeat(context.Background(), m.pub, m.Tick(),
		logging.Fighter(m.fighters[winner].Name(), winner),
		logging.Fighter(f.Name(), loser),
		combatlog.DefeatPayload{Move: m.fighters[winner].Move().Kind().String()},
	)
	m.conclude(Result{Winner: winner, Loser: loser, Reason: ReasonDefeat})
}

// finish marks the match over and cancels the countdown so later intents
// and timers have no effect.
func (m *Match) finish() {
	m.over = true
	if m.countdownTimer != nil {
		m.countdownTimer.Stop()
	}
}

func (m *Match) conclude(result Result) {
	m.result = result
	lifecycle.MatchEnded(context.Background(), m.pub, m.Tick(), m.ref(), m.endPayload(result))
	m.logger.Printf("match %s over: reason=%s winner=%d", m.id, result.Reason, result.Winner)
	if m.cfg.OnEnd != nil {
		m.cfg.OnEnd(result)
	}
}

func (m *Match) endPayload(result Result) lifecycle.MatchEndedPayload {
	payload := lifecycle.MatchEndedPayload{
		Draw:   result.Draw,
		Reason: string(result.Reason),
		Life:   [2]float64{m.fighters[0].Life(), m.fighters[1].Life()},
	}
	if !result.Draw {
		payload.Winner = m.fighters[result.Winner].Name()
		payload.Loser = m.fighters[result.Loser].Name()
	}
	return payload
}

// observer receives fighter notifications without exposing them on Match.
type observer struct {
	m *Match
}

func (o observer) Attack(f *fighter.Fighter, damage float64) {
	if !o.m.live() {
		return
	}
	o.m.resolver.Resolve(f, damage)
}

func (o observer) Defeated(f *fighter.Fighter) {
	o.m.defeated(f)
}
