// Package client is the terminal front end: it draws match snapshots with
// tcell and turns key presses into intents.
package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/evymii/ard-arena/internal/combat"
	"github.com/evymii/ard-arena/internal/input"
	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
	"github.com/evymii/ard-arena/internal/telemetry"
)

const frameInterval = 16 * time.Millisecond

// IntentFunc delivers a move request for one local player.
type IntentFunc func(ctx context.Context, kind moves.Kind) error

// Player is a local keyboard player.
type Player struct {
	Side   int
	Keymap input.Keymap
	Intent IntentFunc
}

// RunnerIntent delivers intents for side straight to a match runner.
func RunnerIntent(r *match.Runner, side int) IntentFunc {
	return func(ctx context.Context, kind moves.Kind) error {
		return r.Send(ctx, match.IntentCommand{Side: side, Kind: kind})
	}
}

type Config struct {
	// Screen defaults to the terminal.
	Screen  tcell.Screen
	Players []Player
	Sound   Sound
	Hold    time.Duration
	Logger  telemetry.Logger
	Now     func() time.Time
}

type Client struct {
	screen  tcell.Screen
	players []Player
	sound   Sound
	tracker *input.Tracker
	logger  telemetry.Logger
	now     func() time.Time

	snap atomic.Pointer[match.Snapshot]
	done chan struct{}
}

func New(cfg Config) (*Client, error) {
	screen := cfg.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("client: init screen: %w", err)
	}
	if cfg.Sound == nil {
		cfg.Sound = Silent{}
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.LoggerFunc(nil)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		screen:  screen,
		players: cfg.Players,
		sound:   cfg.Sound,
		tracker: input.NewTracker(cfg.Hold),
		logger:  cfg.Logger,
		now:     cfg.Now,
		done:    make(chan struct{}),
	}, nil
}

// Frame stores the latest snapshot. It is the runner's OnFrame hook.
func (c *Client) Frame(s match.Snapshot) {
	c.snap.Store(&s)
}

// Hit plays hit feedback. It is the match's OnAttack hook.
func (c *Client) Hit(ev combat.AttackEvent) {
	if ev.LifeDelta > 0 {
		c.sound.Hit(ev.LifeDelta)
	}
}

// Run handles input and redraws until the user quits or ctx ends. Quitting
// returns nil.
func (c *Client) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-c.done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !c.handle(ctx, ev) {
				return nil
			}
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// tick releases keys whose auto-repeat stopped and redraws.
func (c *Client) tick(ctx context.Context) {
	if released := c.tracker.Expire(c.now()); len(released) > 0 {
		c.resolve(ctx)
	}
	if snap := c.snap.Load(); snap != nil {
		draw(c.screen, *snap)
	}
}

func (c *Client) handle(ctx context.Context, ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if isQuit(ev) {
			return false
		}
		c.press(ctx, keysOf(ev))
	case *tcell.EventResize:
		c.screen.Sync()
	}
	return true
}

func (c *Client) press(ctx context.Context, keys []input.Key) {
	now := c.now()
	changed := false
	for _, key := range keys {
		if c.tracker.Press(key, now) {
			changed = true
		}
	}
	if changed {
		c.resolve(ctx)
	}
}

// resolve asks every local player's keymap for a move against the latest
// snapshot and forwards what it yields.
func (c *Client) resolve(ctx context.Context) {
	snap := c.snap.Load()
	if snap == nil || snap.Over {
		return
	}
	pressed := c.tracker.Pressed()
	for _, p := range c.players {
		kind, ok := input.Resolve(pressed, p.Keymap, snap.Fighters[p.Side])
		if !ok || p.Intent == nil {
			continue
		}
		if err := p.Intent(ctx, kind); err != nil {
			c.logger.Printf("intent %s for side %d: %v", kind, p.Side, err)
		}
	}
}

func (c *Client) Close() {
	select {
	case <-c.done:
		return
	default:
		close(c.done)
	}
	c.sound.Close()
	c.screen.Fini()
}
