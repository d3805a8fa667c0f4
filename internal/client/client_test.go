package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/evymii/ard-arena/internal/combat"
	"github.com/evymii/ard-arena/internal/input"
	"github.com/evymii/ard-arena/internal/match"
	"github.com/evymii/ard-arena/internal/moves"
)

func standingSnapshot() match.Snapshot {
	return match.Snapshot{
		Countdown: 42,
		LaneWidth: 600,
		Fighters: [2]match.FighterState{
			{Name: "subzero", X: 50, Y: moves.PlayerTop, Width: 30, Height: 60, Life: 100, Move: moves.Stand},
			{Name: "kano", X: 570, Y: moves.PlayerTop, Width: 30, Height: 60, Life: 10, Orientation: moves.Right, Move: moves.Stand},
		},
	}
}

func newSimScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("init screen: %v", err)
	}
	screen.SetSize(120, 30)
	return screen
}

func TestDrawPlacesFightersAndHUD(t *testing.T) {
	screen := newSimScreen(t)
	defer screen.Fini()

	draw(screen, standingSnapshot())

	if r, _, _, _ := screen.GetContent(0, 0); r != 'S' {
		t.Fatalf("expected left name at origin, got %q", r)
	}
	if r, _, _, _ := screen.GetContent(59, 0); r != '4' {
		t.Fatalf("expected countdown in the middle, got %q", r)
	}
	r, _, style, _ := screen.GetContent(12, 19)
	if fg, _, _ := style.Decompose(); r != '█' || fg != tcell.ColorBlue {
		t.Fatalf("expected left fighter body at (12,19), got %q", r)
	}
	r, _, style, _ = screen.GetContent(116, 19)
	if fg, _, _ := style.Decompose(); r != '█' || fg != tcell.ColorYellow {
		t.Fatalf("expected right fighter body at (116,19), got %q", r)
	}
	if r, _, _, _ := screen.GetContent(30, 19); r == '█' {
		t.Fatalf("expected empty lane between fighters")
	}
	// Ten life fills two of twenty cells, drawn from the right edge.
	if r, _, _, _ := screen.GetContent(119, 1); r != '█' {
		t.Fatalf("expected filled life cell, got %q", r)
	}
	if r, _, _, _ := screen.GetContent(117, 1); r != '░' {
		t.Fatalf("expected empty life cell, got %q", r)
	}
}

func TestBannerText(t *testing.T) {
	snap := standingSnapshot()
	if got := bannerText(snap); got != "" {
		t.Fatalf("expected no banner mid-match, got %q", got)
	}
	snap.Over = true
	snap.Result = &match.Result{Winner: 1, Loser: 0, Reason: match.ReasonOpponentLeft}
	if got := bannerText(snap); got != "KANO WINS (opponent left)" {
		t.Fatalf("unexpected banner %q", got)
	}
	snap.Result = &match.Result{Winner: -1, Loser: -1, Draw: true, Reason: match.ReasonTimeout}
	if got := bannerText(snap); got != "DRAW" {
		t.Fatalf("unexpected banner %q", got)
	}
}

func TestKeysFor(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
		mod  tcell.ModMask
		want []input.Key
	}{
		{"letter", tcell.KeyRune, 'a', tcell.ModNone, []input.Key{"a"}},
		{"shifted letter", tcell.KeyRune, 'A', tcell.ModNone, []input.Key{input.KeyShift, "a"}},
		{"ctrl arrow", tcell.KeyLeft, 0, tcell.ModCtrl, []input.Key{input.KeyCtrl, input.KeyLeft}},
		{"bracket", tcell.KeyRune, '[', tcell.ModNone, []input.Key{"["}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keysFor(tt.key, tt.r, tt.mod)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("expected %v, got %v", tt.want, got)
				}
			}
		})
	}
}

type countingSound struct {
	hits []float64
}

func (s *countingSound) Hit(damage float64) { s.hits = append(s.hits, damage) }
func (s *countingSound) Close()             {}

func TestPressForwardsIntentsAndTickReleases(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	now := time.Unix(0, 0)
	var intents []moves.Kind
	sound := &countingSound{}
	c, err := New(Config{
		Screen: screen,
		Sound:  sound,
		Hold:   40 * time.Millisecond,
		Now:    func() time.Time { return now },
		Players: []Player{{
			Side:   0,
			Keymap: input.Single,
			Intent: func(_ context.Context, kind moves.Kind) error {
				intents = append(intents, kind)
				return nil
			},
		}},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer c.Close()
	screen.SetSize(120, 30)
	ctx := context.Background()

	c.press(ctx, []input.Key{"d"})
	if len(intents) != 0 {
		t.Fatalf("expected no intents before the first snapshot, got %v", intents)
	}
	c.tracker.Release("d")

	c.Frame(standingSnapshot())
	c.press(ctx, []input.Key{"f"})
	c.press(ctx, []input.Key{"f"})
	if len(intents) != 1 || intents[0] != moves.HighKick {
		t.Fatalf("expected a single high kick, got %v", intents)
	}
	now = now.Add(20 * time.Millisecond)
	c.tick(ctx)
	if len(intents) != 1 {
		t.Fatalf("expected a held key to add nothing, got %v", intents)
	}

	now = now.Add(50 * time.Millisecond)
	c.tick(ctx)
	if len(intents) != 2 || intents[1] != moves.Stand {
		t.Fatalf("expected a stand intent on release, got %v", intents)
	}

	c.press(ctx, []input.Key{input.KeyShift, "a"})
	if len(intents) != 3 || intents[2] != moves.Block {
		t.Fatalf("expected block, got %v", intents)
	}
	if r, _, _, _ := screen.GetContent(0, 0); r != 'S' {
		t.Fatalf("expected the last tick to draw the HUD, got %q", r)
	}

	c.Hit(combat.AttackEvent{LifeDelta: 0})
	c.Hit(combat.AttackEvent{LifeDelta: 6})
	if len(sound.hits) != 1 || sound.hits[0] != 6 {
		t.Fatalf("expected one hit sound, got %v", sound.hits)
	}
}

func TestRunStopsWithContext(t *testing.T) {
	c, err := New(Config{Screen: tcell.NewSimulationScreen("UTF-8")})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	defer c.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("client did not stop")
	}
}
